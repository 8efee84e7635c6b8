// Package series turns a trace into per-stream sample lists and the simple
// derived views used by marker charts.
package series

import (
	"sort"
	"strings"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
)

// Sample is one value of a stream
type Sample struct {
	Step  model.Step  `json:"step" yaml:"step"`
	Value model.Value `json:"value" yaml:"value"`
}

// Level is one point of a binary step series. The level holds from Step
// until the next point.
type Level struct {
	Step model.Step `json:"step" yaml:"step"`
	High bool       `json:"high" yaml:"high"`
}

// Span is a naive start/end pair
type Span struct {
	Start model.Step `json:"start" yaml:"start"`
	End   model.Step `json:"end" yaml:"end"`
}

// Split regroups a trace by stream. Samples of each stream are in step order.
func Split(trace *model.Trace) map[string][]Sample {
	out := make(map[string][]Sample)
	for _, step := range trace.Steps() {
		for stream, v := range trace.At(step) {
			out[stream] = append(out[stream], Sample{Step: step, Value: v})
		}
	}
	return out
}

// Binary maps each sample to a high or low level by its truthiness
func Binary(samples []Sample) []Level {
	levels := make([]Level, len(samples))
	for i, s := range samples {
		levels[i] = Level{Step: s.Step, High: s.Value.Truthy()}
	}
	return levels
}

// Occurrences groups the steps of a stream by the value they carry
func Occurrences(samples []Sample) map[string][]model.Step {
	out := make(map[string][]model.Step)
	for _, s := range samples {
		key := s.Value.Text()
		out[key] = append(out[key], s.Step)
	}
	return out
}

// OccurrenceKeys returns the keys of an occurrence map ordered by their first step
func OccurrenceKeys(occ map[string][]model.Step) []string {
	keys := make([]string, 0, len(occ))
	for k := range occ {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := occ[keys[i]], occ[keys[j]]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Pairs zips the steps of values starting with "start" with those starting
// with "end", in order of appearance. Surplus starts or ends are dropped and
// categories are ignored.
func Pairs(samples []Sample) []Span {
	var opens, closes []model.Step
	for _, s := range samples {
		text, ok := s.Value.AsString()
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(text, "start"):
			opens = append(opens, s.Step)
		case strings.HasPrefix(text, "end"):
			closes = append(closes, s.Step)
		}
	}

	n := len(opens)
	if len(closes) < n {
		n = len(closes)
	}
	spans := make([]Span, n)
	for i := 0; i < n; i++ {
		spans[i] = Span{Start: opens[i], End: closes[i]}
	}
	return spans
}
