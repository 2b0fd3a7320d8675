// Package model defines the core data structures for toasty.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"
)

// DefaultDuration is the time-to-live of a toast pushed without a duration.
const DefaultDuration = 4000 * time.Millisecond

// IDPrefix is prepended to generated toast ids.
const IDPrefix = "toast_"

// Variant is the informational kind of a toast.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantDanger  Variant = "danger"
)

// ValidVariants returns all valid variant values.
func ValidVariants() []Variant {
	return []Variant{VariantDefault, VariantSuccess, VariantWarning, VariantDanger}
}

// ErrInvalidVariant is returned by ParseVariant for unknown names.
var ErrInvalidVariant = errors.New("variant must be one of default, success, warning, danger")

// ParseVariant parses a variant name. The empty string yields VariantDefault.
// "info" is accepted for default, "error" and "critical" for danger.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "info":
		return VariantDefault, nil
	case "success":
		return VariantSuccess, nil
	case "warning", "warn":
		return VariantWarning, nil
	case "danger", "error", "critical":
		return VariantDanger, nil
	default:
		return VariantDefault, fmt.Errorf("%w: got %q", ErrInvalidVariant, s)
	}
}

// Position is where a host anchors the toast stack.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionTopCenter,
		PositionBottomLeft,
		PositionBottomRight,
		PositionBottomCenter,
	}
}

// IsBottom reports whether the stack grows up from the bottom edge.
func (p Position) IsBottom() bool {
	return strings.HasPrefix(string(p), "bottom-")
}

// Action is an optional button shown on a toast. OnClick receives the toast id.
type Action struct {
	Label   string          `json:"label"`
	OnClick func(id string) `json:"-"`
}

// Options is the argument to a push. Nil pointer fields take their defaults.
type Options struct {
	ID          string
	Title       string
	Description string
	Variant     Variant
	Duration    *time.Duration // nil = DefaultDuration, <= 0 = expire immediately
	Action      *Action
	Dismissible *bool // nil = true
	AppName     string
	Icon        string
}

// Item is a single active toast.
type Item struct {
	ID          string        `json:"id"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Variant     Variant       `json:"variant"`
	Duration    time.Duration `json:"duration"`
	Action      *Action       `json:"action,omitempty"`
	Dismissible bool          `json:"dismissible"`
	CreatedAt   time.Time     `json:"created_at"`

	// Informational origin fields
	AppName string `json:"app_name,omitempty"`
	Icon    string `json:"icon,omitempty"`
}

// NewID generates a new toast id.
func NewID() string {
	return IDPrefix + ulid.Make().String()
}

// DurationOf returns a pointer to d, for use in Options.
func DurationOf(d time.Duration) *time.Duration {
	return &d
}

// BoolOf returns a pointer to b, for use in Options.
func BoolOf(b bool) *bool {
	return &b
}

// NewItem builds an Item from options, filling in defaults.
func NewItem(opts Options, now time.Time) Item {
	item := Item{
		ID:          opts.ID,
		Title:       opts.Title,
		Description: opts.Description,
		Variant:     opts.Variant,
		Duration:    DefaultDuration,
		Action:      opts.Action,
		Dismissible: true,
		CreatedAt:   now,
		AppName:     opts.AppName,
		Icon:        opts.Icon,
	}
	if item.ID == "" {
		item.ID = NewID()
	}
	if item.Variant == "" {
		item.Variant = VariantDefault
	}
	if opts.Duration != nil {
		item.Duration = *opts.Duration
	}
	if opts.Dismissible != nil {
		item.Dismissible = *opts.Dismissible
	}
	return item
}

// Age returns a human-readable age like "3 seconds ago".
func (i *Item) Age(now time.Time) string {
	return humanize.RelTime(i.CreatedAt, now, "ago", "from now")
}

// DescriptionTruncated returns the description truncated to maxLen characters.
// If the description is longer, it is truncated and "..." is appended.
func (i *Item) DescriptionTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	// Collapse whitespace and newlines to single spaces
	desc := strings.Join(strings.Fields(i.Description), " ")

	if len(desc) <= maxLen {
		return desc
	}
	if maxLen <= 3 {
		return desc[:maxLen]
	}
	return desc[:maxLen-3] + "..."
}

// RemoveReason records why a toast left the registry.
type RemoveReason int

const (
	// ReasonExpired means the countdown reached zero.
	ReasonExpired RemoveReason = iota + 1
	// ReasonDismissed means the user dismissed it (gesture commit or close button).
	ReasonDismissed
	// ReasonClosed means it was removed through the API.
	ReasonClosed
	// ReasonEvicted means it was the oldest toast when capacity overflowed.
	ReasonEvicted
	// ReasonCleared means the registry was cleared.
	ReasonCleared
)

// String returns the string representation of the reason.
func (r RemoveReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonDismissed:
		return "dismissed"
	case ReasonClosed:
		return "closed"
	case ReasonEvicted:
		return "evicted"
	case ReasonCleared:
		return "cleared"
	default:
		return "unknown"
	}
}
