package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
)

type CSVFormatter struct {
	w io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{w: w}
}

func (f *CSVFormatter) Format(reports []Report) error {
	w := csv.NewWriter(f.w)

	headers := []string{"File", "Stage", "Phase", "Start", "End", "Steps", "Label"}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, row := range Rows(reports) {
		record := []string{
			row.File,
			row.Stage,
			row.Phase,
			strconv.Itoa(row.Start),
			strconv.Itoa(row.End),
			strconv.Itoa(row.Duration),
			row.Label,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
