package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
)

// Report is the reconstructed stage set of one trace file, in display order
type Report struct {
	File   string        `json:"file" yaml:"file"`
	Stages []model.Stage `json:"stages" yaml:"stages"`
}

// Row is one interval flattened for tabular output
type Row struct {
	File     string
	Stage    string
	Phase    string
	Start    model.Step
	End      model.Step
	Duration int
	Label    string
}

// Rows flattens reports in order: file, stage, then interval
func Rows(reports []Report) []Row {
	var rows []Row
	for _, r := range reports {
		for _, st := range r.Stages {
			for _, iv := range st.Intervals {
				rows = append(rows, Row{
					File:     r.File,
					Stage:    st.Key,
					Phase:    model.PhaseName(st.Key[:1]),
					Start:    iv.Start,
					End:      iv.End,
					Duration: iv.Duration(),
					Label:    iv.Label,
				})
			}
		}
	}
	return rows
}

// Formatter writes stage reports in one output format
type Formatter interface {
	Format(reports []Report) error
}

// Supported output format names
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatYAML  = "yaml"
)

// New returns the formatter for name writing to w
func New(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", FormatTable:
		return NewTableFormatter(w), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	case FormatYAML:
		return NewYAMLFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (table, json, csv, yaml)", name)
	}
}
