package model

import (
	"sort"
)

// Step is the discrete time index of a trace
type Step = int

// Trace maps each step to the stream values recorded at that step.
// A Trace is immutable once built; use TraceBuilder to create one.
type Trace struct {
	steps map[Step]map[string]Value
	order []Step
}

// TraceBuilder accumulates assignments for a Trace
type TraceBuilder struct {
	steps map[Step]map[string]Value
}

func NewTraceBuilder() *TraceBuilder {
	return &TraceBuilder{steps: make(map[Step]map[string]Value)}
}

// Set records value for stream at step. A later assignment to the same
// stream and step overwrites the earlier one.
func (b *TraceBuilder) Set(step Step, stream string, value Value) {
	streams, ok := b.steps[step]
	if !ok {
		streams = make(map[string]Value)
		b.steps[step] = streams
	}
	streams[stream] = value
}

// Touch registers step without assigning any stream
func (b *TraceBuilder) Touch(step Step) {
	if _, ok := b.steps[step]; !ok {
		b.steps[step] = make(map[string]Value)
	}
}

// Build freezes the accumulated assignments. The builder must not be used afterwards.
func (b *TraceBuilder) Build() *Trace {
	t := &Trace{steps: b.steps, order: make([]Step, 0, len(b.steps))}
	for step := range b.steps {
		t.order = append(t.order, step)
	}
	sort.Ints(t.order)
	b.steps = nil
	return t
}

// Steps returns all steps in ascending order
func (t *Trace) Steps() []Step {
	out := make([]Step, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Trace) Len() int {
	return len(t.order)
}

// FirstStep returns the smallest step, or false for an empty trace
func (t *Trace) FirstStep() (Step, bool) {
	if len(t.order) == 0 {
		return 0, false
	}
	return t.order[0], true
}

// Value returns the value of stream at step
func (t *Trace) Value(step Step, stream string) (Value, bool) {
	streams, ok := t.steps[step]
	if !ok {
		return Value{}, false
	}
	v, ok := streams[stream]
	return v, ok
}

// At returns a copy of all stream values at step
func (t *Trace) At(step Step) map[string]Value {
	streams := t.steps[step]
	out := make(map[string]Value, len(streams))
	for k, v := range streams {
		out[k] = v
	}
	return out
}

// Streams returns the sorted names of all streams present anywhere in the trace
func (t *Trace) Streams() []string {
	seen := make(map[string]struct{})
	for _, streams := range t.steps {
		for name := range streams {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize returns a trace shifted so that its first step is 0
func (t *Trace) Normalize() *Trace {
	first, ok := t.FirstStep()
	if !ok || first == 0 {
		return t
	}
	b := NewTraceBuilder()
	for _, step := range t.order {
		b.Touch(step - first)
		for name, v := range t.steps[step] {
			b.Set(step-first, name, v)
		}
	}
	return b.Build()
}

// Restrict returns a trace holding only the given streams. Steps that end up
// without any of them are dropped.
func (t *Trace) Restrict(streams ...string) *Trace {
	keep := make(map[string]struct{}, len(streams))
	for _, s := range streams {
		keep[s] = struct{}{}
	}
	b := NewTraceBuilder()
	for _, step := range t.order {
		for name, v := range t.steps[step] {
			if _, ok := keep[name]; ok {
				b.Set(step, name, v)
			}
		}
	}
	return b.Build()
}
