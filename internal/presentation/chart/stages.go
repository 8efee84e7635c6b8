package chart

import (
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/series"
)

// barHeight is the share of a row a bar fills
const barHeight = 0.8

// StageChart draws one row of bars per stage, top to bottom in the given
// order. A non-empty binary series is overlaid as a step line spanning the
// rows, high at the top.
func StageChart(stages []model.Stage, binary []series.Level, style Style) ([]byte, error) {
	style = style.withDefaults()
	p := newPlot(style, "Time step")

	rows := max(len(stages), 1)
	b, labels := stageBars(stages, style)
	if len(b.items) > 0 {
		p.Add(b)
	}
	p.Y.Tick.Marker = rowTicks(labels)

	if len(binary) > 0 {
		high := float64(rows-1) + barHeight/2
		line, err := stepLine(binary, -barHeight/2, high, style.BinaryColor)
		if err != nil {
			return nil, err
		}
		p.Add(line)
		p.Legend.Add("binary (high = true)", line)
	}

	p.X.Min, p.X.Max = stageDomain(stages, binary)
	p.Y.Min, p.Y.Max = -0.5, float64(rows)-0.5

	return render(p, float64(style.Width), float64(rows*style.RowHeight)+90)
}

// stageBars places the first stage on the top row; labels[row] is the key
// drawn on that row
func stageBars(stages []model.Stage, style Style) (*bars, []string) {
	n := len(stages)
	labels := make([]string, n)
	b := &bars{height: barHeight}
	for i, st := range stages {
		row := n - 1 - i
		labels[row] = st.Key
		for _, iv := range st.Intervals {
			b.items = append(b.items, bar{
				x0:    float64(iv.Start),
				x1:    float64(iv.End),
				row:   float64(row),
				fill:  style.fill(st.Key),
				label: iv.Label,
			})
		}
	}
	return b, labels
}

// stageDomain spans every interval and binary sample
func stageDomain(stages []model.Stage, binary []series.Level) (float64, float64) {
	var sp span
	for _, st := range stages {
		for _, iv := range st.Intervals {
			sp.add(iv.Start)
			sp.add(iv.End)
		}
	}
	for _, l := range binary {
		sp.add(l.Step)
	}
	return sp.domain()
}
