package timeline

import (
	"sort"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

// Builder reconstructs stage intervals from a lifecycle stream
type Builder struct {
	opts Options
}

// NewBuilder creates a builder; an empty Overlap policy means FIFO
func NewBuilder(opts Options) *Builder {
	if opts.Overlap == "" {
		opts.Overlap = OverlapFIFO
	}
	return &Builder{opts: opts}
}

// opening is a start waiting for (or matched with) its end. arrival is the
// index of the event that produced it; synthetic openings take the index of
// the orphan end.
type opening struct {
	arrival   int
	step      model.Step
	variant   string
	tag       string
	synthetic bool
}

// pair is a matched start and end; arrival is the index of the end event
type pair struct {
	start   opening
	end     model.Event
	arrival int
}

// Events decomposes the lifecycle stream of every step in ascending order
func (b *Builder) Events(trace *model.Trace) ([]model.Event, error) {
	events := make([]model.Event, 0, trace.Len())
	for _, step := range trace.Steps() {
		v, ok := trace.Value(step, b.opts.Stream)
		if !ok {
			return nil, &MissingStepError{Step: step, Stream: b.opts.Stream}
		}
		raw, ok := v.AsString()
		if !ok {
			return nil, &UnrecognizedValueError{Step: step, Value: v.Text()}
		}
		ev, ok := Decompose(raw)
		if !ok {
			return nil, &UnrecognizedValueError{Step: step, Value: raw}
		}
		ev.Step = step
		events = append(events, ev)
	}
	return events, nil
}

// Build reconstructs the stage set of trace
func (b *Builder) Build(trace *model.Trace) (model.StageSet, error) {
	events, err := b.Events(trace)
	if err != nil {
		return nil, err
	}

	sentinel := b.opts.Sentinel
	if sentinel == SentinelFirstStep {
		sentinel, _ = trace.FirstStep()
	}

	pairs, dangling, err := b.match(events, sentinel)
	if err != nil {
		return nil, err
	}

	stages, err := materialize(pairs, dangling)
	if err != nil {
		return nil, err
	}

	util.LogDebug("Reconstructed stages",
		util.F("stream", b.opts.Stream), util.F("events", len(events)), util.F("stages", len(stages)))
	return stages, nil
}

// match pairs each end with the oldest pending start of its category.
// Starts still pending at the end of the trace are returned as dangling.
func (b *Builder) match(events []model.Event, sentinel model.Step) ([]pair, []dangling, error) {
	queues := make(map[string][]opening)
	var pairs []pair

	for i, ev := range events {
		queue := queues[ev.Category]

		switch ev.Lifecycle {
		case model.LifecycleStart:
			if b.opts.Overlap == OverlapReject && len(queue) > 0 {
				return nil, nil, &OverlapError{Category: ev.Category, Pending: queue[0].step, Step: ev.Step}
			}
			queues[ev.Category] = append(queue, opening{
				arrival: i,
				step:    ev.Step,
				variant: ev.Variant,
				tag:     ev.Tag,
			})

		case model.LifecycleEnd:
			var open opening
			if len(queue) == 0 {
				start := sentinel
				if start > ev.Step {
					start = ev.Step
				}
				util.LogDebugf("End of %s at step %d has no start, opening it at step %d", ev.Category, ev.Step, start)
				open = opening{arrival: i, step: start, synthetic: true}
			} else {
				open = queue[0]
				queues[ev.Category] = queue[1:]
			}
			pairs = append(pairs, pair{start: open, end: ev, arrival: i})
		}
	}

	var left []dangling
	for category, queue := range queues {
		for _, open := range queue {
			left = append(left, dangling{category: category, open: open})
		}
	}
	sort.Slice(left, func(i, j int) bool { return left[i].open.arrival < left[j].open.arrival })
	return pairs, left, nil
}

type dangling struct {
	category string
	open     opening
}

// side is one start or one end filed under its stage key
type side struct {
	arrival int
	step    model.Step
	tag     string
}

// materialize files every start and end under its stage key, checks that
// both sides agree and pairs the i-th start with the i-th end of each key.
// A side without a variant inherits the variant of its partner.
func materialize(pairs []pair, left []dangling) (model.StageSet, error) {
	starts := make(map[string][]side)
	ends := make(map[string][]side)

	for _, p := range pairs {
		startVariant, endVariant := p.start.variant, p.end.Variant
		if startVariant == "" {
			startVariant = endVariant
		}
		if endVariant == "" {
			endVariant = startVariant
		}
		startKey := p.end.Category + startVariant
		endKey := p.end.Category + endVariant
		if startKey != endKey {
			return nil, &CategoryMismatchError{StartOnly: []string{startKey}, EndOnly: []string{endKey}}
		}

		starts[startKey] = append(starts[startKey], side{arrival: p.start.arrival, step: p.start.step, tag: p.start.tag})
		ends[endKey] = append(ends[endKey], side{arrival: p.arrival, step: p.end.Step, tag: p.end.Tag})
	}
	for _, d := range left {
		key := d.category + d.open.variant
		starts[key] = append(starts[key], side{arrival: d.open.arrival, step: d.open.step, tag: d.open.tag})
	}

	startCounts := make(map[string]int, len(starts))
	for key, list := range starts {
		startCounts[key] = len(list)
	}
	endCounts := make(map[string]int, len(ends))
	for key, list := range ends {
		endCounts[key] = len(list)
	}

	var startOnly, endOnly []string
	for _, key := range sortedKeys(startCounts) {
		if _, ok := endCounts[key]; !ok {
			startOnly = append(startOnly, key)
		}
	}
	for _, key := range sortedKeys(endCounts) {
		if _, ok := startCounts[key]; !ok {
			endOnly = append(endOnly, key)
		}
	}
	if len(startOnly) > 0 || len(endOnly) > 0 {
		return nil, &CategoryMismatchError{StartOnly: startOnly, EndOnly: endOnly}
	}

	for _, key := range sortedKeys(startCounts) {
		if startCounts[key] != endCounts[key] {
			return nil, &UnbalancedCountsError{Category: key, Starts: startCounts[key], Ends: endCounts[key]}
		}
	}

	stages := make(model.StageSet, len(starts))
	for key, opened := range starts {
		closed := ends[key]
		sort.SliceStable(opened, func(i, j int) bool { return opened[i].arrival < opened[j].arrival })
		sort.SliceStable(closed, func(i, j int) bool { return closed[i].arrival < closed[j].arrival })

		intervals := make([]model.Interval, len(opened))
		for i := range opened {
			intervals[i] = model.Interval{
				Start: opened[i].step,
				End:   closed[i].step,
				Label: label(opened[i].tag, closed[i].tag),
			}
		}
		sort.SliceStable(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })
		stages[key] = intervals
	}
	return stages, nil
}

// label joins the tags of both sides; a start without a tag yields the end tag
func label(startTag, endTag string) string {
	if startTag == "" {
		return endTag
	}
	return startTag + "," + endTag
}
