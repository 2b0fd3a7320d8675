package dbus

import (
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toasty/internal/model"
)

// Urgency levels from the freedesktop.org notification specification.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved and never sent by toastyd.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// CloseReasonFor maps a registry removal onto the wire close code.
// Eviction and bulk clear have no code of their own and report closed.
func CloseReasonFor(r model.RemoveReason) CloseReason {
	switch r {
	case model.ReasonExpired:
		return CloseReasonExpired
	case model.ReasonDismissed:
		return CloseReasonDismissed
	case model.ReasonClosed, model.ReasonEvicted, model.ReasonCleared:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// Notification represents an incoming D-Bus Notify call.
// It contains the raw parameters from the org.freedesktop.Notifications.Notify method.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ParsedActions converts the D-Bus action array to structured form.
// D-Bus actions are passed as alternating key/label pairs.
func (n *Notification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

// PrimaryAction returns the action a toast's single button invokes: the
// "default" action if present, otherwise the first one.
func (n *Notification) PrimaryAction() (Action, bool) {
	actions := n.ParsedActions()
	if len(actions) == 0 {
		return Action{}, false
	}
	for _, a := range actions {
		if a.Key == "default" {
			return a, true
		}
	}
	return actions[0], true
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *Notification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return UrgencyNormal
}

// Category extracts the category hint from the notification.
func (n *Notification) Category() string {
	return n.stringHint("category")
}

// SoundFile extracts the sound-file hint.
func (n *Notification) SoundFile() string {
	return expandSoundPath(n.stringHint("sound-file"))
}

// SuppressSound returns true if the suppress-sound hint is set.
func (n *Notification) SuppressSound() bool {
	return n.boolHint("suppress-sound")
}

// Resident returns true if the resident hint is set.
// Resident notifications are not removed after an action is invoked.
func (n *Notification) Resident() bool {
	return n.boolHint("resident")
}

// Variant derives the toast variant from the urgency and category hints.
func (n *Notification) Variant() model.Variant {
	category := n.Category()
	switch {
	case n.Urgency() >= UrgencyCritical, strings.HasSuffix(category, ".error"):
		return model.VariantDanger
	case strings.Contains(category, "warning"):
		return model.VariantWarning
	case strings.HasSuffix(category, ".complete"):
		return model.VariantSuccess
	default:
		return model.VariantDefault
	}
}

// Lifetime returns the toast duration requested by the sender. A positive
// expire_timeout is taken as milliseconds; -1 (server default) and 0
// (never expire, which toasts cannot honour) defer to fallback.
func (n *Notification) Lifetime(fallback time.Duration) time.Duration {
	if n.ExpireTimeout > 0 {
		return time.Duration(n.ExpireTimeout) * time.Millisecond
	}
	return fallback
}

// Request is a Notify call decoded into toast terms.
type Request struct {
	AppName    string
	AppIcon    string
	Title      string
	Body       string
	ReplacesID uint32
	Variant    model.Variant
	Urgency    int
	// Timeout is the lifetime the sender asked for; zero leaves it to the server.
	Timeout       time.Duration
	Action        *Action
	Resident      bool
	SoundFile     string
	SuppressSound bool
}

// Request decodes the notification's actions and hints.
func (n *Notification) Request() Request {
	req := Request{
		AppName:       n.AppName,
		AppIcon:       n.AppIcon,
		Title:         n.Summary,
		Body:          n.Body,
		ReplacesID:    n.ReplacesID,
		Variant:       n.Variant(),
		Urgency:       n.Urgency(),
		Timeout:       n.Lifetime(0),
		Resident:      n.Resident(),
		SoundFile:     n.SoundFile(),
		SuppressSound: n.SuppressSound(),
	}
	if a, ok := n.PrimaryAction(); ok {
		req.Action = &a
	}
	return req
}

// Options returns the toast for the request without id or action.
// fallback is the lifetime used when the sender did not pick one.
func (r Request) Options(fallback time.Duration) model.Options {
	d := r.Timeout
	if d <= 0 {
		d = fallback
	}
	return model.Options{
		Title:       r.Title,
		Description: r.Body,
		Variant:     r.Variant,
		Duration:    model.DurationOf(d),
		AppName:     r.AppName,
		Icon:        r.AppIcon,
	}
}

func (n *Notification) stringHint(key string) string {
	if v, ok := n.Hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

func (n *Notification) boolHint(key string) bool {
	if v, ok := n.Hints[key]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

func expandSoundPath(p string) string {
	return strings.TrimPrefix(p, "file://")
}

// ServerCapabilities lists the capabilities advertised by toastyd.
var ServerCapabilities = []string{
	"actions", // Support notification actions
	"body",    // Support body text
	"sound",   // Play sounds
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "toastyd"
	Vendor      string // "toasty"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "toastyd",
		Vendor:      "toasty",
		Version:     "dev",
		SpecVersion: "1.2",
	}
}
