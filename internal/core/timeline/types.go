package timeline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
)

// SentinelFirstStep selects the first step of the trace as the start of an
// interval whose end has no pending start.
const SentinelFirstStep model.Step = -1

// OverlapPolicy decides what happens when a category is started again while
// an earlier start of the same category is still pending.
type OverlapPolicy string

const (
	// OverlapFIFO queues the starts; ends close them oldest first.
	OverlapFIFO OverlapPolicy = "fifo"
	// OverlapReject fails the reconstruction with an OverlapError.
	OverlapReject OverlapPolicy = "reject"
)

// ParseOverlapPolicy validates a policy name; the empty string means fifo
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch OverlapPolicy(strings.ToLower(s)) {
	case "", OverlapFIFO:
		return OverlapFIFO, nil
	case OverlapReject:
		return OverlapReject, nil
	default:
		return "", fmt.Errorf("unknown overlap policy %q (fifo, reject)", s)
	}
}

// Options configure a reconstruction
type Options struct {
	Stream   string
	Sentinel model.Step
	Overlap  OverlapPolicy
}

// DefaultOptions reconstructs the given stream with first-step sentinel and FIFO pairing
func DefaultOptions(stream string) Options {
	return Options{
		Stream:   stream,
		Sentinel: SentinelFirstStep,
		Overlap:  OverlapFIFO,
	}
}

// lifecyclePattern decomposes "start_e", "end_eok", "start_a,retry"
var lifecyclePattern = regexp.MustCompile(`^(start|end)_([A-Za-z])([A-Za-z0-9]*)(?:,(.*))?$`)

// Decompose splits a lifecycle value into its parts. The step of the
// returned event is left zero.
func Decompose(raw string) (model.Event, bool) {
	m := lifecyclePattern.FindStringSubmatch(raw)
	if m == nil {
		return model.Event{}, false
	}
	return model.Event{
		Lifecycle: model.Lifecycle(m[1]),
		Category:  m[2],
		Variant:   m[3],
		Tag:       m[4],
	}, true
}

// MissingStepError reports a step without the lifecycle stream
type MissingStepError struct {
	Step   model.Step
	Stream string
}

func (e *MissingStepError) Error() string {
	return fmt.Sprintf("missing stage in step %d: stream %q has no value", e.Step, e.Stream)
}

// UnrecognizedValueError reports a lifecycle value that is not start_X/end_X
type UnrecognizedValueError struct {
	Step  model.Step
	Value string
}

func (e *UnrecognizedValueError) Error() string {
	return fmt.Sprintf("stage not matching in step %d: %q", e.Step, e.Value)
}

// CategoryMismatchError reports stage keys that were only started or only ended
type CategoryMismatchError struct {
	StartOnly []string
	EndOnly   []string
}

func (e *CategoryMismatchError) Error() string {
	return fmt.Sprintf("start and end stages differ: started only %v, ended only %v", e.StartOnly, e.EndOnly)
}

// UnbalancedCountsError reports a stage key with unequal numbers of starts and ends
type UnbalancedCountsError struct {
	Category string
	Starts   int
	Ends     int
}

func (e *UnbalancedCountsError) Error() string {
	return fmt.Sprintf("stage %s: %d starts, %d ends", e.Category, e.Starts, e.Ends)
}

// OverlapError reports a second pending start under OverlapReject
type OverlapError struct {
	Category string
	Pending  model.Step
	Step     model.Step
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("stage %s started at step %d while the start at step %d is still open", e.Category, e.Step, e.Pending)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
