// Package chart renders stage sets and series as SVG figures and as text
// for terminals.
package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/series"
)

// Style holds the settings shared by every SVG chart
type Style struct {
	Title       string
	Width       int
	RowHeight   int
	Colors      map[string]string
	BinaryColor string
	FontSize    int
}

// DefaultStyle is a 900pt wide figure with 28pt rows
func DefaultStyle() Style {
	return Style{
		Width:       900,
		RowHeight:   28,
		BinaryColor: "#444488",
		FontSize:    12,
	}
}

func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.RowHeight <= 0 {
		s.RowHeight = d.RowHeight
	}
	if s.BinaryColor == "" {
		s.BinaryColor = d.BinaryColor
	}
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	return s
}

// fallbackColor fills keys without a configured color
const fallbackColor = "#999999"

// Color looks up key, then its one-letter category, then the fallback
func (s Style) Color(key string) string {
	if c, ok := s.Colors[key]; ok {
		return c
	}
	if len(key) > 1 {
		if c, ok := s.Colors[key[:1]]; ok {
			return c
		}
	}
	return fallbackColor
}

// fill is Color as an image color
func (s Style) fill(key string) color.Color {
	return parseColor(s.Color(key))
}

// parseColor reads #rrggbb; anything else is the fallback gray
func parseColor(hex string) color.Color {
	var r, g, b uint8
	if len(hex) != 7 {
		return color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	}
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// span is the range of the step values seen so far
type span struct {
	lo, hi int
	set    bool
}

func (s *span) add(v int) {
	if !s.set {
		s.lo, s.hi, s.set = v, v, true
		return
	}
	if v < s.lo {
		s.lo = v
	}
	if v > s.hi {
		s.hi = v
	}
}

// domain is at least one step wide
func (s span) domain() (float64, float64) {
	if s.hi <= s.lo {
		return float64(s.lo), float64(s.lo + 1)
	}
	return float64(s.lo), float64(s.hi)
}

var edgeStyle = draw.LineStyle{
	Color: color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
	Width: vg.Points(0.5),
}

// newPlot builds a titled plot with a vertical grid and the style's font size
func newPlot(style Style, xLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = style.Title
	p.X.Label.Text = xLabel

	size := vg.Points(float64(style.FontSize))
	p.Title.TextStyle.Font.Size = size + vg.Points(2)
	p.X.Label.TextStyle.Font.Size = size
	p.X.Tick.Label.Font.Size = size
	p.Y.Tick.Label.Font.Size = size
	p.Legend.TextStyle.Font.Size = size
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Horizontal.Width = 0
	grid.Vertical.Color = color.Gray{Y: 0xdd}
	p.Add(grid)
	return p
}

// render draws p onto an SVG canvas of the given size in points
func render(p *plot.Plot, width, height float64) ([]byte, error) {
	c := vgsvg.New(vg.Points(width), vg.Points(height))
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write svg: %w", err)
	}
	return buf.Bytes(), nil
}

// rowTicks labels row i at y = i
func rowTicks(labels []string) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: l}
	}
	return ticks
}

// bar is a filled box on a row, x0..x1 in data units
type bar struct {
	x0, x1 float64
	row    float64
	fill   color.Color
	label  string
}

// bars draws boxes centred on their rows, each at least minBarWidth wide
type bars struct {
	items  []bar
	height float64
}

// minBarWidth keeps zero-length intervals visible
const minBarWidth = vg.Length(2)

func (b *bars) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)

	sty := p.X.Tick.Label
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter

	for _, it := range b.items {
		x0, x1 := trX(it.x0), trX(it.x1)
		if x1-x0 < minBarWidth {
			x1 = x0 + minBarWidth
		}
		y0, y1 := trY(it.row-b.height/2), trY(it.row+b.height/2)

		box := []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
		c.FillPolygon(it.fill, c.ClipPolygonXY(box))
		c.StrokeLines(edgeStyle, c.ClipLinesXY(append(box, box[0]))...)

		if it.label != "" {
			c.FillText(sty, vg.Point{X: (x0 + x1) / 2, Y: (y0 + y1) / 2}, it.label)
		}
	}
}

// DataRange covers every box so the axes include them
func (b *bars) DataRange() (xmin, xmax, ymin, ymax float64) {
	for i, it := range b.items {
		lo, hi := it.row-b.height/2, it.row+b.height/2
		if i == 0 {
			xmin, xmax, ymin, ymax = it.x0, it.x1, lo, hi
			continue
		}
		xmin, xmax = min(xmin, it.x0), max(xmax, it.x1)
		ymin, ymax = min(ymin, lo), max(ymax, hi)
	}
	return xmin, xmax, ymin, ymax
}

// stepLine is a post-step line between low and high: each level holds
// until the next sample
func stepLine(levels []series.Level, low, high float64, hex string) (*plotter.Line, error) {
	xys := make(plotter.XYs, len(levels))
	for i, l := range levels {
		xys[i].X = float64(l.Step)
		xys[i].Y = low
		if l.High {
			xys[i].Y = high
		}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to build binary line: %w", err)
	}
	line.StepStyle = plotter.PostStep
	line.LineStyle.Color = parseColor(hex)
	line.LineStyle.Width = vg.Points(1.5)
	return line, nil
}
