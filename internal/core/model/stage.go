package model

import (
	"sort"
)

// Lifecycle tells whether a lifecycle event opens or closes a phase
type Lifecycle string

const (
	LifecycleStart Lifecycle = "start"
	LifecycleEnd   Lifecycle = "end"
)

// Event is one decomposed value of a lifecycle stream, e.g. "end_aok,late"
// at step 7 is {7, end, "a", "ok", "late"}.
type Event struct {
	Step      Step
	Lifecycle Lifecycle
	Category  string
	Variant   string
	Tag       string
}

// Key is the stage key of the event before any variant propagation
func (e Event) Key() string {
	return e.Category + e.Variant
}

// Interval is one reconstructed phase occurrence. Start <= End.
type Interval struct {
	Start Step   `json:"start" yaml:"start"`
	End   Step   `json:"end" yaml:"end"`
	Label string `json:"label" yaml:"label"`
}

func (i Interval) Duration() int {
	return i.End - i.Start
}

// StageSet maps a stage key to its intervals ordered by start step
type StageSet map[string][]Interval

// Stage is a single named row of a StageSet
type Stage struct {
	Key       string     `json:"stage" yaml:"stage"`
	Intervals []Interval `json:"intervals" yaml:"intervals"`
}

// Keys returns the stage keys in lexical order
func (s StageSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ordered returns the stages sorted by rank in order. Keys absent from order
// come after the ranked ones, sorted lexically. reverse flips the result.
func (s StageSet) Ordered(order DisplayOrder, reverse bool) []Stage {
	keys := s.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return order.Less(keys[i], keys[j])
	})
	if reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	stages := make([]Stage, 0, len(keys))
	for _, k := range keys {
		stages = append(stages, Stage{Key: k, Intervals: s[k]})
	}
	return stages
}

// DisplayOrder ranks stage keys for rendering
type DisplayOrder map[string]int

// NewDisplayOrder ranks keys by their position in the list
func NewDisplayOrder(keys ...string) DisplayOrder {
	order := make(DisplayOrder, len(keys))
	for i, k := range keys {
		if _, ok := order[k]; !ok {
			order[k] = i
		}
	}
	return order
}

func (o DisplayOrder) Less(a, b string) bool {
	ra, okA := o[a]
	rb, okB := o[b]
	switch {
	case okA && okB:
		if ra != rb {
			return ra < rb
		}
		return a < b
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}
