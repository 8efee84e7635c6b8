package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/mapelog"
)

func sampleReports() []Report {
	return []Report{
		{
			File: "run1/TWC-output-window.txt",
			Stages: []model.Stage{
				{Key: "e", Intervals: []model.Interval{{Start: 8, End: 9}}},
				{Key: "aok", Intervals: []model.Interval{{Start: 2, End: 5, Label: "retry,"}}},
				{Key: "m", Intervals: []model.Interval{{Start: 0, End: 1}, {Start: 10, End: 1200}}},
			},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleReports())

	require.Len(t, rows, 4)
	assert.Equal(t, Row{
		File: "run1/TWC-output-window.txt", Stage: "aok", Phase: "Analysis",
		Start: 2, End: 5, Duration: 3, Label: "retry,",
	}, rows[1])
	assert.Equal(t, "Monitor", rows[3].Phase)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, name := range []string{"", "table", "JSON", "csv", "yaml"} {
		f, err := New(name, &buf)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := New("xml", &buf)
	assert.Error(t, err)
}

func TestTableFormatterFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(sampleReports()))
	out := buf.String()

	for _, want := range []string{"Stage", "Analysis", "retry,", "1,190", "Total", "3 stages", "4 intervals", "1,195"} {
		assert.Contains(t, out, want)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "└"))
	width := len([]rune(lines[0]))
	for _, line := range lines {
		assert.Equal(t, width, len([]rune(line)), "rows are aligned: %q", line)
	}
}

func TestTableFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(nil))
	assert.Contains(t, buf.String(), "0 intervals")
}

func TestTableFormatterFormatTiming(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := &mapelog.Timing{
		T0:    t0,
		Nodes: []string{"Monitor"},
		Bars: []mapelog.Bar{
			{Node: "Monitor", Start: t0.Add(10 * time.Millisecond), End: t0.Add(40 * time.Millisecond)},
		},
		Markers: []mapelog.Marker{{At: t0, Label: "Scan"}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).FormatTiming(tm))
	out := buf.String()

	assert.Contains(t, out, "Monitor")
	assert.Contains(t, out, "0.010")
	assert.Contains(t, out, "0.040")
	assert.Contains(t, out, "30")
	assert.Contains(t, out, "Scan")
}

func TestJSONFormatterFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(sampleReports()))

	var decoded []Report
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	if diff := cmp.Diff(sampleReports(), decoded); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	assert.Contains(t, buf.String(), `"stage": "aok"`)
}

func TestJSONFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatterFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).Format(sampleReports()))

	var decoded []Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	if diff := cmp.Diff(sampleReports(), decoded); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	assert.Contains(t, buf.String(), "- file: run1/TWC-output-window.txt")
}

func TestCSVFormatterFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(sampleReports()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"File", "Stage", "Phase", "Start", "End", "Steps", "Label"}, records[0])
	assert.Equal(t, []string{"run1/TWC-output-window.txt", "aok", "Analysis", "2", "5", "3", "retry,"}, records[2])
}
