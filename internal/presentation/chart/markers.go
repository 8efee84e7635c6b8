package chart

import (
	"fmt"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/series"
)

// MarkerChart draws a dot per occurrence of each value of a stream on a
// single baseline between the false and true levels, colored by value, with
// an optional binary step line and a legend entry per value.
func MarkerChart(occ map[string][]model.Step, binary []series.Level, style Style) ([]byte, error) {
	style = style.withDefaults()
	p := newPlot(style, "Time step")
	p.Y.Tick.Marker = rowTicks([]string{"false", "true"})

	if len(binary) > 0 {
		line, err := stepLine(binary, 0, 1, style.BinaryColor)
		if err != nil {
			return nil, err
		}
		p.Add(line)
	}

	var sp span
	for _, key := range series.OccurrenceKeys(occ) {
		xys := make(plotter.XYs, len(occ[key]))
		for i, s := range occ[key] {
			xys[i].X, xys[i].Y = float64(s), 0.5
			sp.add(s)
		}
		dots, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to place %s markers: %w", key, err)
		}
		dots.GlyphStyle.Color = style.fill(key)
		dots.GlyphStyle.Radius = vg.Points(4)
		dots.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(dots)
		p.Legend.Add(key, dots)
	}
	for _, l := range binary {
		sp.add(l.Step)
	}

	p.X.Min, p.X.Max = sp.domain()
	p.Y.Min, p.Y.Max = -0.2, 1.2

	return render(p, float64(style.Width), 220)
}
