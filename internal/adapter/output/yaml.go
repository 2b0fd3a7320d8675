package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toasty/internal/model"
)

// YAMLFormatter formats toasts as a YAML sequence.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes toasts as a YAML sequence.
func (f *YAMLFormatter) Format(w io.Writer, items []model.Item) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(toRecords(items, f.opts.now())); err != nil {
		return err
	}
	return encoder.Close()
}
