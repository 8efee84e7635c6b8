package model

import (
	"fmt"
	"strconv"
)

// Kind identifies which field of a Value is populated
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindStr
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindStr:
		return "Str"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single stream value. Float only appears in traces read from the
// output dialect.
type Value struct {
	Kind  Kind    `json:"kind"`
	Bool  bool    `json:"bool,omitempty"`
	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Str   string  `json:"str,omitempty"`
}

func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func StrValue(s string) Value { return Value{Kind: KindStr, Str: s} }

// AsString returns the string payload when the value is a Str
func (v Value) AsString() (string, bool) {
	if v.Kind != KindStr {
		return "", false
	}
	return v.Str, true
}

// Truthy reports the boolean reading of a value used by binary series:
// Bool as is, numbers when non-zero, strings when non-empty.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	default:
		return v.Str != ""
	}
}

// Literal renders the value in input-dialect form
func (v Value) Literal() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return `"` + v.Str + `"`
	}
}

// String renders the value in output-dialect form, e.g. Bool(true)
func (v Value) String() string {
	switch v.Kind {
	case KindStr:
		return fmt.Sprintf("Str(%q)", v.Str)
	default:
		return fmt.Sprintf("%s(%s)", v.Kind, v.Literal())
	}
}

// Text is the plain textual payload, without quoting
func (v Value) Text() string {
	if v.Kind == KindStr {
		return v.Str
	}
	return v.Literal()
}
