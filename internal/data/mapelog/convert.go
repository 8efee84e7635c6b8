package mapelog

import (
	"fmt"
	"regexp"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
)

var publishPattern = regexp.MustCompile(`^Published to MQTT topic (.+?): (\{.*\})\s*$`)

// Published collects the string values published per topic, in log order
func Published(entries []Entry) map[string][]string {
	topics := make(map[string][]string)
	for _, e := range entries {
		m := publishPattern.FindStringSubmatch(e.Message)
		if m == nil {
			continue
		}
		value, ok := Payload(m[2])
		if !ok {
			continue
		}
		topics[m[1]] = append(topics[m[1]], value)
	}
	return topics
}

// Convert builds a trace of the values published on stream, one step per
// value starting at 0.
func Convert(entries []Entry, stream string) (*model.Trace, error) {
	values, ok := Published(entries)[stream]
	if !ok {
		return nil, fmt.Errorf("%w on %q", ErrNoEvents, stream)
	}

	b := model.NewTraceBuilder()
	for step, v := range values {
		b.Set(step, stream, model.StrValue(v))
	}
	return b.Build(), nil
}
