package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

// TextChart draws stages as a terminal Gantt chart of width columns. Each
// column covers an equal share of the step range; a cell is filled when any
// interval of the row overlaps it.
func TextChart(w io.Writer, stages []model.Stage, width int, color bool) error {
	labelWidth := 4
	for _, st := range stages {
		if lw := util.GetDisplayWidth(st.Key); lw > labelWidth {
			labelWidth = lw
		}
	}

	cols := width - labelWidth - 3
	if cols < 10 {
		cols = 10
	}

	var sp span
	for _, st := range stages {
		for _, iv := range st.Intervals {
			sp.add(iv.Start)
			sp.add(iv.End)
		}
	}
	lo, hi := sp.domain()
	perCol := (hi - lo + 1) / float64(cols)

	var sb strings.Builder
	for _, st := range stages {
		cells := make([]bool, cols)
		for _, iv := range st.Intervals {
			first := int((float64(iv.Start) - lo) / perCol)
			last := int((float64(iv.End) - lo) / perCol)
			for i := first; i <= last && i < cols; i++ {
				if i >= 0 {
					cells[i] = true
				}
			}
		}

		var bar strings.Builder
		for _, filled := range cells {
			if filled {
				bar.WriteString("█")
			} else {
				bar.WriteString("·")
			}
		}

		sb.WriteString(util.PadLeft(st.Key, labelWidth))
		sb.WriteString(" │")
		sb.WriteString(util.Colorize(phaseColor(st.Key), bar.String(), color))
		sb.WriteByte('\n')
	}

	left := fmt.Sprintf("%d", int(lo))
	right := fmt.Sprintf("%d", int(hi))
	gap := cols - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	sb.WriteString(left + strings.Repeat(" ", gap) + right)
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

// phaseColor picks a terminal color by phase letter
func phaseColor(key string) string {
	if key == "" {
		return ""
	}
	switch key[:1] {
	case model.PhaseMonitor:
		return util.ColorCyan
	case model.PhaseAnalysis:
		if strings.HasSuffix(key, "nom") {
			return util.ColorRed
		}
		return util.ColorGreen
	case model.PhasePlan:
		return util.ColorYellow
	case model.PhaseLegitimate:
		return util.ColorBlue
	case model.PhaseExecute:
		return util.ColorMagenta
	default:
		return ""
	}
}
