package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
)

func sampleTrace() *model.Trace {
	b := model.NewTraceBuilder()
	b.Set(0, "stageout", model.StrValue("start_m"))
	b.Set(0, "maple", model.BoolValue(true))
	b.Set(1, "stageout", model.StrValue("end_m"))
	b.Set(2, "stageout", model.StrValue("start_m"))
	b.Set(2, "maple", model.BoolValue(false))
	b.Set(3, "stageout", model.StrValue("end_m"))
	b.Set(3, "acc", model.IntValue(12))
	return b.Build()
}

func TestSplit(t *testing.T) {
	streams := Split(sampleTrace())

	require.Len(t, streams, 3)
	assert.Equal(t, []Sample{
		{Step: 0, Value: model.BoolValue(true)},
		{Step: 2, Value: model.BoolValue(false)},
	}, streams["maple"])
	assert.Len(t, streams["stageout"], 4)
	assert.Equal(t, []Sample{{Step: 3, Value: model.IntValue(12)}}, streams["acc"])
}

func TestBinary(t *testing.T) {
	levels := Binary([]Sample{
		{Step: 0, Value: model.BoolValue(true)},
		{Step: 4, Value: model.BoolValue(false)},
		{Step: 5, Value: model.IntValue(2)},
	})

	assert.Equal(t, []Level{{0, true}, {4, false}, {5, true}}, levels)
}

func TestOccurrences(t *testing.T) {
	occ := Occurrences(Split(sampleTrace())["stageout"])

	assert.Equal(t, map[string][]model.Step{
		"start_m": {0, 2},
		"end_m":   {1, 3},
	}, occ)
	assert.Equal(t, []string{"start_m", "end_m"}, OccurrenceKeys(occ))
}

func TestPairs(t *testing.T) {
	t.Run("zips in order", func(t *testing.T) {
		spans := Pairs(Split(sampleTrace())["stageout"])
		assert.Equal(t, []Span{{0, 1}, {2, 3}}, spans)
	})

	t.Run("surplus dropped", func(t *testing.T) {
		spans := Pairs([]Sample{
			{Step: 0, Value: model.StrValue("start")},
			{Step: 1, Value: model.StrValue("end_ok")},
			{Step: 2, Value: model.StrValue("start")},
			{Step: 3, Value: model.BoolValue(true)},
		})
		assert.Equal(t, []Span{{0, 1}}, spans)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Pairs(nil))
	})
}
