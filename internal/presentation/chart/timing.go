package chart

import (
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/mapelog"
)

// TimingChart draws the wall-clock phase bars of each node in milliseconds
// since the first event. The first node of tm.Nodes is the bottom row.
// Markers are dashed vertical lines across all rows.
func TimingChart(tm *mapelog.Timing, style Style) ([]byte, error) {
	style = style.withDefaults()
	p := newPlot(style, "Time since first event (ms)")

	ms := func(t time.Time) float64 {
		return float64(t.Sub(tm.T0)) / float64(time.Millisecond)
	}

	n := len(tm.Nodes)
	rowOf := make(map[string]int, n)
	for i, node := range tm.Nodes {
		rowOf[node] = i
	}
	p.Y.Tick.Marker = rowTicks(tm.Nodes)

	xmax := ms(tm.Last)
	b := &bars{height: barHeight}
	for _, br := range tm.Bars {
		end := ms(br.DisplayEnd)
		xmax = max(xmax, end)
		b.items = append(b.items, bar{
			x0:    ms(br.Start),
			x1:    end,
			row:   float64(rowOf[br.Node]),
			fill:  style.fill(br.Node),
			label: br.Label(),
		})
	}
	if len(b.items) > 0 {
		p.Add(b)
	}

	top := float64(max(n, 1)) - 0.5
	for _, m := range tm.Markers {
		x := ms(m.At)
		line, err := plotter.NewLine(plotter.XYs{{X: x, Y: -0.5}, {X: x, Y: top}})
		if err != nil {
			return nil, fmt.Errorf("failed to draw marker %q: %w", m.Label, err)
		}
		line.LineStyle.Color = color.Black
		line.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(line)
	}

	if xmax <= 0 {
		xmax = 1
	}
	p.X.Min, p.X.Max = 0, xmax
	p.Y.Min, p.Y.Max = -0.5, top

	return render(p, float64(style.Width), float64(max(n, 1)*style.RowHeight)+90)
}
