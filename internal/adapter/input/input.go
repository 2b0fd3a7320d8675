// Package input reads toast requests from external sources.
package input

import (
	"context"
	"strings"
	"unicode"

	"github.com/jmylchreest/toasty/internal/model"
)

// Entry is one toast to send.
type Entry struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"`
	DurationMs  *int64 `json:"duration_ms,omitempty"`
	AppName     string `json:"app_name,omitempty"`

	// Urgency is the freedesktop urgency (0-2), used when Variant is empty.
	Urgency *int `json:"urgency,omitempty"`
}

// ParsedVariant resolves the entry's variant, falling back to urgency.
func (e Entry) ParsedVariant() (model.Variant, error) {
	if e.Variant == "" && e.Urgency != nil && *e.Urgency >= 2 {
		return model.VariantDanger, nil
	}
	return model.ParseVariant(e.Variant)
}

// Adapter produces toast entries from a source.
type Adapter interface {
	// Name returns the adapter identifier (e.g., "stdin").
	Name() string

	// Import reads every entry from the source.
	Import(ctx context.Context) ([]Entry, error)
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// sanitizeString strips control characters other than newline and tab.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(s))
}
