package formatter

import (
	"io"

	"gopkg.in/yaml.v3"
)

type YAMLFormatter struct {
	w io.Writer
}

func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{w: w}
}

func (f *YAMLFormatter) Format(reports []Report) error {
	enc := yaml.NewEncoder(f.w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return err
	}
	return enc.Close()
}
