package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/toasty/internal/model"
)

// JSONFormatter formats toasts as a JSON array.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes toasts as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, items []model.Item) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toRecords(items, f.opts.now()))
}
