package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/mapelog"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

type TableFormatter struct {
	w       io.Writer
	headers []string
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		w:       w,
		headers: []string{"File", "Stage", "Phase", "Start", "End", "Steps", "Label"},
	}
}

// Format prints one row per interval and a total row
func (f *TableFormatter) Format(reports []Report) error {
	rows := Rows(reports)

	stages := make(map[string]struct{})
	totalSteps := 0
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		stages[row.Stage] = struct{}{}
		totalSteps += row.Duration
		body = append(body, []string{
			row.File,
			row.Stage,
			row.Phase,
			strconv.Itoa(row.Start),
			strconv.Itoa(row.End),
			util.FormatNumber(row.Duration),
			row.Label,
		})
	}

	total := []string{
		"Total",
		fmt.Sprintf("%d stages", len(stages)),
		fmt.Sprintf("%d intervals", len(rows)),
		"", "",
		util.FormatNumber(totalSteps),
		"",
	}

	t := table{w: f.w, headers: f.headers, rightAligned: map[int]bool{3: true, 4: true, 5: true}}
	return t.render(body, total)
}

// FormatTiming prints the phase bars of a MAPE log with offsets from the first event
func (f *TableFormatter) FormatTiming(tm *mapelog.Timing) error {
	body := make([][]string, 0, len(tm.Bars))
	for _, bar := range tm.Bars {
		body = append(body, []string{
			bar.Node,
			util.FormatOffset(bar.Start, tm.T0),
			util.FormatOffset(bar.End, tm.T0),
			bar.Label(),
		})
	}
	for _, m := range tm.Markers {
		body = append(body, []string{
			"· " + m.Label,
			util.FormatOffset(m.At, tm.T0),
			"", "",
		})
	}

	t := table{
		w:            f.w,
		headers:      []string{"Node", "Start (s)", "End (s)", "Duration (ms)"},
		rightAligned: map[int]bool{1: true, 2: true, 3: true},
	}
	return t.render(body, nil)
}

// table draws rows inside a box with one column per header
type table struct {
	w            io.Writer
	headers      []string
	rightAligned map[int]bool
}

func (t table) render(body [][]string, total []string) error {
	widths := t.columnWidths(body, total)

	var sb strings.Builder
	t.border(&sb, widths, "top")
	t.row(&sb, t.headers, widths)
	t.border(&sb, widths, "middle")
	for _, values := range body {
		t.row(&sb, values, widths)
	}
	if total != nil {
		t.border(&sb, widths, "middle")
		t.row(&sb, total, widths)
	}
	t.border(&sb, widths, "bottom")

	_, err := io.WriteString(t.w, sb.String())
	return err
}

// columnWidths is the display width of the widest cell per column, at least 5
func (t table) columnWidths(body [][]string, total []string) []int {
	widths := make([]int, len(t.headers))
	measure := func(values []string) {
		for i, v := range values {
			if w := runewidth.StringWidth(v); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.headers)
	for _, values := range body {
		measure(values)
	}
	if total != nil {
		measure(total)
	}
	for i := range widths {
		if widths[i] < 5 {
			widths[i] = 5
		}
	}
	return widths
}

func (t table) border(sb *strings.Builder, widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	sb.WriteString(left)
	for i, width := range widths {
		sb.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			sb.WriteString(middle)
		}
	}
	sb.WriteString(right)
	sb.WriteByte('\n')
}

func (t table) row(sb *strings.Builder, values []string, widths []int) {
	sb.WriteString("│")
	for i, value := range values {
		sb.WriteByte(' ')
		if t.rightAligned[i] {
			sb.WriteString(runewidth.FillLeft(value, widths[i]))
		} else {
			sb.WriteString(runewidth.FillRight(value, widths[i]))
		}
		sb.WriteString(" │")
	}
	sb.WriteByte('\n')
}
