// Package output provides output formatters for toast listings.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jmylchreest/toasty/internal/model"
)

// Formatter formats toasts for output.
type Formatter interface {
	// Format writes formatted toasts to the writer.
	Format(w io.Writer, items []model.Item) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// ValidFormats returns all supported format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatIDs}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainFormatter(opts), nil
	case FormatJSON:
		return NewJSONFormatter(opts), nil
	case FormatYAML:
		return NewYAMLFormatter(opts), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown format %q, must be one of: %v", format, ValidFormats())
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template       string    // Custom template for plain format
	ShowIndex      bool      // Show 1-based index prefix
	ShowAge        bool      // Show humanized age
	ShowApp        bool      // Show app name
	DescMaxLen     int       // Maximum description length (0 = unlimited)
	IncludeNewline bool      // Keep newlines in descriptions
	Now            time.Time // Reference time for ages (zero = time.Now())
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowAge:    true,
		ShowApp:    true,
		DescMaxLen: 80,
	}
}

func (o FormatterOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// record is the serialized shape of a toast in json and yaml output.
type record struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title,omitempty" yaml:"title,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Variant     model.Variant `json:"variant" yaml:"variant"`
	DurationMs  int64         `json:"duration_ms" yaml:"duration_ms"`
	Dismissible bool          `json:"dismissible" yaml:"dismissible"`
	Action      string        `json:"action,omitempty" yaml:"action,omitempty"`
	AppName     string        `json:"app_name,omitempty" yaml:"app_name,omitempty"`
	CreatedAt   time.Time     `json:"created_at" yaml:"created_at"`
	Age         string        `json:"age" yaml:"age"`
}

func toRecords(items []model.Item, now time.Time) []record {
	records := make([]record, 0, len(items))
	for _, item := range items {
		r := record{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Variant:     item.Variant,
			DurationMs:  item.Duration.Milliseconds(),
			Dismissible: item.Dismissible,
			AppName:     item.AppName,
			CreatedAt:   item.CreatedAt,
			Age:         item.Age(now),
		}
		if item.Action != nil {
			r.Action = item.Action.Label
		}
		records = append(records, r)
	}
	return records
}
