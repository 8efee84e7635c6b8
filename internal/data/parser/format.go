package parser

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
)

// FormatInput renders a trace as a canonical input-dialect document: one
// "step: stream = value" line per assignment, ordered by step then stream.
// Floats have no input-dialect literal and are written as their decimal text.
func FormatInput(trace *model.Trace) string {
	var sb strings.Builder
	for _, step := range trace.Steps() {
		streams := trace.At(step)
		names := make([]string, 0, len(streams))
		for name := range streams {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			sb.WriteString(strconv.Itoa(step))
			sb.WriteString(": ")
			sb.WriteString(name)
			sb.WriteString(" = ")
			sb.WriteString(streams[name].Literal())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FormatOutput renders a trace in the output dialect, "stream[step] = Tag(literal)".
// Strings are quoted with Go escapes so embedded quotes survive ParseOutput.
func FormatOutput(trace *model.Trace) string {
	var sb strings.Builder
	for _, step := range trace.Steps() {
		streams := trace.At(step)
		names := make([]string, 0, len(streams))
		for name := range streams {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			v := streams[name]
			sb.WriteString(name)
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(step))
			sb.WriteString("] = ")
			sb.WriteString(v.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
