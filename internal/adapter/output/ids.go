package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/toasty/internal/model"
)

// IDsFormatter outputs just the toast IDs, one per line.
// Useful for piping to other commands (e.g., xargs toasty close).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes toast IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, items []model.Item) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(w, item.ID); err != nil {
			return err
		}
	}
	return nil
}
