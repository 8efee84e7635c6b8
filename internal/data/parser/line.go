package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
)

// LineKind classifies a single line of a trace document
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineIndexedAssign // <step>: <stream> = <value>
	LineBareAssign    // <stream> = <value>
	LineOutputAssign  // <stream>[<step>] = <Tag>(<literal>)
	LineMalformed
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineIndexedAssign:
		return "indexed"
	case LineBareAssign:
		return "bare"
	case LineOutputAssign:
		return "output"
	default:
		return "malformed"
	}
}

// Line is the classified form of one input line. Step is only meaningful
// for LineIndexedAssign and LineOutputAssign.
type Line struct {
	Kind   LineKind
	Step   model.Step
	Stream string
	Value  model.Value
	Raw    string
}

var (
	streamPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)

	outputPattern = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9_]*)\[(\d+)\]\s*=\s*(Bool|Str|Int|Float)\((.*)\)\s*$`)
	outputBool    = regexp.MustCompile(`^(true|false)$`)
	outputStr     = regexp.MustCompile(`^"([^"]*)"$`)
	outputInt     = regexp.MustCompile(`^-?\d+$`)
	outputFloat   = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][-+]?\d+)?$`)
)

// ClassifyInput classifies a line under the input dialect grammar
func ClassifyInput(raw string) Line {
	line := Line{Raw: raw}
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		line.Kind = LineBlank
		return line
	case strings.HasPrefix(trimmed, "//"):
		line.Kind = LineComment
		return line
	}

	eq := strings.IndexByte(trimmed, '=')
	if eq < 0 {
		line.Kind = LineMalformed
		return line
	}
	lhs := strings.TrimSpace(trimmed[:eq])
	rhs := strings.TrimSpace(trimmed[eq+1:])

	line.Kind = LineBareAssign
	if colon := strings.IndexByte(lhs, ':'); colon >= 0 {
		idx := strings.TrimSpace(lhs[:colon])
		if !digitsPattern.MatchString(idx) {
			line.Kind = LineMalformed
			return line
		}
		step, err := strconv.Atoi(idx)
		if err != nil {
			line.Kind = LineMalformed
			return line
		}
		line.Kind = LineIndexedAssign
		line.Step = step
		lhs = strings.TrimSpace(lhs[colon+1:])
	}

	if !streamPattern.MatchString(lhs) {
		line.Kind = LineMalformed
		return line
	}

	value, ok := parseInputValue(rhs)
	if !ok {
		line.Kind = LineMalformed
		return line
	}
	line.Stream = lhs
	line.Value = value
	return line
}

// ClassifyOutput classifies a line under the output dialect grammar. Lines
// that are not output assignments are reported as malformed.
func ClassifyOutput(raw string) Line {
	line := Line{Raw: raw, Kind: LineMalformed}

	m := outputPattern.FindStringSubmatch(raw)
	if m == nil {
		if strings.TrimSpace(raw) == "" {
			line.Kind = LineBlank
		}
		return line
	}

	step, err := strconv.Atoi(m[2])
	if err != nil {
		return line
	}
	value, ok := parseOutputLiteral(m[3], m[4])
	if !ok {
		return line
	}

	line.Kind = LineOutputAssign
	line.Step = step
	line.Stream = m[1]
	line.Value = value
	return line
}

// parseInputValue applies the input dialect typing rule. The only failure
// is an empty value; unrecognized tokens are kept verbatim as strings.
func parseInputValue(rhs string) (model.Value, bool) {
	if strings.HasPrefix(rhs, `"`) {
		end := strings.LastIndexByte(rhs, '"')
		if end > 0 {
			tail := strings.TrimSpace(rhs[end+1:])
			if tail == "" || strings.HasPrefix(tail, "//") {
				return model.StrValue(rhs[1:end]), true
			}
		}
		// not a whole quoted string; a comment can only follow the last quote
		token := rhs
		if i := strings.Index(rhs[end+1:], "//"); i >= 0 {
			token = strings.TrimSpace(rhs[:end+1+i])
		}
		return model.StrValue(token), true
	}

	token := rhs
	if i := strings.Index(token, "//"); i >= 0 {
		token = strings.TrimSpace(token[:i])
	}
	if token == "" {
		return model.Value{}, false
	}

	switch {
	case token == "true":
		return model.BoolValue(true), true
	case token == "false":
		return model.BoolValue(false), true
	case digitsPattern.MatchString(token):
		if i, err := strconv.ParseInt(token, 10, 64); err == nil {
			return model.IntValue(i), true
		}
	}
	return model.StrValue(token), true
}

func parseOutputLiteral(tag, literal string) (model.Value, bool) {
	switch tag {
	case "Bool":
		if outputBool.MatchString(literal) {
			return model.BoolValue(literal == "true"), true
		}
	case "Str":
		if strings.HasPrefix(literal, `"`) {
			if unquoted, err := strconv.Unquote(literal); err == nil {
				return model.StrValue(unquoted), true
			}
		}
		if m := outputStr.FindStringSubmatch(literal); m != nil {
			return model.StrValue(m[1]), true
		}
	case "Int":
		if outputInt.MatchString(literal) {
			if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
				return model.IntValue(i), true
			}
		}
	case "Float":
		if outputFloat.MatchString(literal) {
			if f, err := strconv.ParseFloat(literal, 64); err == nil {
				return model.FloatValue(f), true
			}
		}
	}
	return model.Value{}, false
}
