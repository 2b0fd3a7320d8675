package httpapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/toasty/internal/model"
)

// CreateRequest is the body of POST /v1/toasts.
type CreateRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"`
	DurationMs  *int64 `json:"duration_ms,omitempty"` // nil = default, <= 0 = expire immediately
	Dismissible *bool  `json:"dismissible,omitempty"`
	AppName     string `json:"app_name,omitempty"`
}

// Options validates the request and converts it to push options.
func (r CreateRequest) Options() (model.Options, error) {
	if r.Title == "" && r.Description == "" {
		return model.Options{}, errors.New("title or description is required")
	}

	variant, err := model.ParseVariant(r.Variant)
	if err != nil {
		return model.Options{}, fmt.Errorf("invalid variant %q: %w", r.Variant, err)
	}

	opts := model.Options{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Variant:     variant,
		Dismissible: r.Dismissible,
		AppName:     r.AppName,
	}
	if r.DurationMs != nil {
		opts.Duration = model.DurationOf(time.Duration(*r.DurationMs) * time.Millisecond)
	}
	return opts, nil
}

// CreateResponse is returned for a pushed toast.
type CreateResponse struct {
	ID string `json:"id"`
}

// ToastView is a toast as reported by the API.
type ToastView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Variant     model.Variant `json:"variant"`
	DurationMs  int64         `json:"duration_ms"`
	RemainingMs int64         `json:"remaining_ms"`
	Paused      bool          `json:"paused"`
	Dismissible bool          `json:"dismissible"`
	ActionLabel string        `json:"action_label,omitempty"`
	AppName     string        `json:"app_name,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Item converts the view back to a model item, for output formatting.
func (v ToastView) Item() model.Item {
	item := model.Item{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Variant:     v.Variant,
		Duration:    time.Duration(v.DurationMs) * time.Millisecond,
		Dismissible: v.Dismissible,
		CreatedAt:   v.CreatedAt,
		AppName:     v.AppName,
	}
	if v.ActionLabel != "" {
		item.Action = &model.Action{Label: v.ActionLabel}
	}
	return item
}

// ListResponse is the body of GET /v1/toasts.
type ListResponse struct {
	Toasts []ToastView `json:"toasts"`
	Count  int         `json:"count"`
	Max    int         `json:"max"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
