package dbus

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/model"
)

func TestCloseReasonString(t *testing.T) {
	tests := []struct {
		reason   CloseReason
		expected string
	}{
		{CloseReasonExpired, "expired"},
		{CloseReasonDismissed, "dismissed"},
		{CloseReasonClosed, "closed"},
		{CloseReasonUndefined, "undefined"},
		{CloseReason(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reason.String())
		})
	}
}

func TestCloseReasonFor(t *testing.T) {
	tests := []struct {
		in   model.RemoveReason
		want CloseReason
	}{
		{model.ReasonExpired, CloseReasonExpired},
		{model.ReasonDismissed, CloseReasonDismissed},
		{model.ReasonClosed, CloseReasonClosed},
		{model.ReasonEvicted, CloseReasonClosed},
		{model.ReasonCleared, CloseReasonClosed},
		{model.RemoveReason(0), CloseReasonUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CloseReasonFor(tt.in))
		})
	}
}

func TestParsedActions(t *testing.T) {
	tests := []struct {
		name     string
		actions  []string
		expected []Action
	}{
		{
			name:     "empty",
			actions:  nil,
			expected: []Action{},
		},
		{
			name:     "single action",
			actions:  []string{"default", "Open"},
			expected: []Action{{Key: "default", Label: "Open"}},
		},
		{
			name:     "odd number (incomplete pair ignored)",
			actions:  []string{"default", "Open", "orphan"},
			expected: []Action{{Key: "default", Label: "Open"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Notification{Actions: tt.actions}
			assert.Equal(t, tt.expected, n.ParsedActions())
		})
	}
}

func TestPrimaryAction(t *testing.T) {
	n := &Notification{Actions: []string{"reply", "Reply", "default", "Open"}}
	a, ok := n.PrimaryAction()
	require.True(t, ok)
	assert.Equal(t, Action{Key: "default", Label: "Open"}, a)

	n = &Notification{Actions: []string{"undo", "Undo", "view", "View"}}
	a, ok = n.PrimaryAction()
	require.True(t, ok)
	assert.Equal(t, "undo", a.Key)

	_, ok = (&Notification{}).PrimaryAction()
	assert.False(t, ok)
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		name     string
		hints    map[string]dbus.Variant
		expected int
	}{
		{"no hint", nil, UrgencyNormal},
		{"low", map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(0))}, UrgencyLow},
		{"critical", map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))}, UrgencyCritical},
		{"wrong type", map[string]dbus.Variant{"urgency": dbus.MakeVariant("high")}, UrgencyNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Notification{Hints: tt.hints}
			assert.Equal(t, tt.expected, n.Urgency())
		})
	}
}

func TestVariant(t *testing.T) {
	tests := []struct {
		name     string
		urgency  byte
		category string
		want     model.Variant
	}{
		{"plain", 1, "", model.VariantDefault},
		{"critical", 2, "", model.VariantDanger},
		{"network error", 1, "network.error", model.VariantDanger},
		{"transfer complete", 1, "transfer.complete", model.VariantSuccess},
		{"critical beats complete", 2, "transfer.complete", model.VariantDanger},
		{"warning category", 0, "x-battery.warning", model.VariantWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(tt.urgency)}
			if tt.category != "" {
				hints["category"] = dbus.MakeVariant(tt.category)
			}
			n := &Notification{Hints: hints}
			assert.Equal(t, tt.want, n.Variant())
		})
	}
}

func TestLifetime(t *testing.T) {
	fallback := 7 * time.Second

	assert.Equal(t, 2500*time.Millisecond, (&Notification{ExpireTimeout: 2500}).Lifetime(fallback))
	assert.Equal(t, fallback, (&Notification{ExpireTimeout: -1}).Lifetime(fallback))
	assert.Equal(t, fallback, (&Notification{ExpireTimeout: 0}).Lifetime(fallback))
}

func TestBoolAndStringHints(t *testing.T) {
	n := &Notification{Hints: map[string]dbus.Variant{
		"resident":       dbus.MakeVariant(true),
		"suppress-sound": dbus.MakeVariant(true),
		"sound-file":     dbus.MakeVariant("file:///usr/share/sounds/bell.oga"),
	}}

	assert.True(t, n.Resident())
	assert.True(t, n.SuppressSound())
	assert.Equal(t, "/usr/share/sounds/bell.oga", n.SoundFile())

	empty := &Notification{}
	assert.False(t, empty.Resident())
	assert.Empty(t, empty.SoundFile())
}

func TestDefaultServerInfo(t *testing.T) {
	info := DefaultServerInfo()
	assert.Equal(t, "toastyd", info.Name)
	assert.Equal(t, "toasty", info.Vendor)
	assert.Equal(t, "1.2", info.SpecVersion)
}

func TestServerCapabilities(t *testing.T) {
	assert.Contains(t, ServerCapabilities, "actions")
	assert.Contains(t, ServerCapabilities, "body")
}

func TestSendRequestSetVariant(t *testing.T) {
	for _, v := range model.ValidVariants() {
		t.Run(string(v), func(t *testing.T) {
			var req SendRequest
			req.SetVariant(v)

			hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(req.Urgency))}
			if req.Category != "" {
				hints["category"] = dbus.MakeVariant(req.Category)
			}
			assert.Equal(t, v, (&Notification{Hints: hints}).Variant())
		})
	}
}

func TestRequestOptions(t *testing.T) {
	req := Request{
		AppName: "ci",
		AppIcon: "build",
		Title:   "Build finished",
		Body:    "all green",
		Variant: model.VariantSuccess,
	}

	opts := req.Options(4 * time.Second)
	assert.Equal(t, "Build finished", opts.Title)
	assert.Equal(t, "all green", opts.Description)
	assert.Equal(t, model.VariantSuccess, opts.Variant)
	assert.Equal(t, "ci", opts.AppName)
	assert.Equal(t, "build", opts.Icon)
	require.NotNil(t, opts.Duration)
	assert.Equal(t, 4*time.Second, *opts.Duration)

	req.Timeout = time.Second
	assert.Equal(t, time.Second, *req.Options(4 * time.Second).Duration)
}
