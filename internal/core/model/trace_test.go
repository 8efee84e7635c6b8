package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTrace() *Trace {
	b := NewTraceBuilder()
	b.Set(12, "s", StrValue("end_m"))
	b.Set(10, "s", StrValue("start_m"))
	b.Set(10, "maple", BoolValue(true))
	b.Set(11, "acc", IntValue(3))
	return b.Build()
}

func TestTraceStepsSorted(t *testing.T) {
	tr := buildTrace()

	assert.Equal(t, []Step{10, 11, 12}, tr.Steps())
	assert.Equal(t, 3, tr.Len())

	first, ok := tr.FirstStep()
	require.True(t, ok)
	assert.Equal(t, 10, first)
}

func TestTraceValueLookup(t *testing.T) {
	tr := buildTrace()

	v, ok := tr.Value(10, "maple")
	require.True(t, ok)
	assert.Equal(t, BoolValue(true), v)

	_, ok = tr.Value(11, "maple")
	assert.False(t, ok)

	_, ok = tr.Value(99, "s")
	assert.False(t, ok)
}

func TestTraceAtReturnsCopy(t *testing.T) {
	tr := buildTrace()

	at := tr.At(10)
	at["s"] = StrValue("changed")

	v, _ := tr.Value(10, "s")
	assert.Equal(t, "start_m", v.Str)
}

func TestTraceStreams(t *testing.T) {
	assert.Equal(t, []string{"acc", "maple", "s"}, buildTrace().Streams())
}

func TestTraceNormalize(t *testing.T) {
	tr := buildTrace().Normalize()

	assert.Equal(t, []Step{0, 1, 2}, tr.Steps())
	v, ok := tr.Value(2, "s")
	require.True(t, ok)
	assert.Equal(t, "end_m", v.Str)
}

func TestTraceNormalizeKeepsEmptySteps(t *testing.T) {
	b := NewTraceBuilder()
	b.Touch(5)
	b.Set(7, "x", BoolValue(false))

	tr := b.Build().Normalize()
	assert.Equal(t, []Step{0, 2}, tr.Steps())
}

func TestTraceRestrict(t *testing.T) {
	tr := buildTrace().Restrict("s")

	assert.Equal(t, []Step{10, 12}, tr.Steps())
	assert.Equal(t, []string{"s"}, tr.Streams())
}

func TestEmptyTrace(t *testing.T) {
	tr := NewTraceBuilder().Build()

	_, ok := tr.FirstStep()
	assert.False(t, ok)
	assert.Empty(t, tr.Steps())
	assert.Same(t, tr, tr.Normalize())
}

func TestValueRendering(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		literal string
		output  string
		truthy  bool
	}{
		{"bool", BoolValue(true), "true", "Bool(true)", true},
		{"int", IntValue(42), "42", "Int(42)", true},
		{"zero", IntValue(0), "0", "Int(0)", false},
		{"float", FloatValue(1.5), "1.5", "Float(1.5)", true},
		{"str", StrValue("start_m"), `"start_m"`, `Str("start_m")`, true},
		{"empty str", StrValue(""), `""`, `Str("")`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.literal, tt.value.Literal())
			assert.Equal(t, tt.output, tt.value.String())
			assert.Equal(t, tt.truthy, tt.value.Truthy())
		})
	}
}

func TestValueAsString(t *testing.T) {
	s, ok := StrValue("x").AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = IntValue(1).AsString()
	assert.False(t, ok)
}
