package daemon

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/clock"
	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/registry"
)

type closeSignal struct {
	id     uint32
	reason dbus.CloseReason
}

type actionSignal struct {
	id  uint32
	key string
}

type fakeSignaler struct {
	mu      sync.Mutex
	closed  []closeSignal
	actions []actionSignal
}

func (s *fakeSignaler) EmitNotificationClosed(id uint32, reason dbus.CloseReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = append(s.closed, closeSignal{id, reason})
	return nil
}

func (s *fakeSignaler) EmitActionInvoked(id uint32, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, actionSignal{id, key})
	return nil
}

func newTestBridge(t *testing.T, capacity int) (*Bridge, *registry.Registry, *fakeSignaler, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Unix(1700000000, 0))
	reg := registry.New(registry.Options{Max: capacity, Clock: clk})
	t.Cleanup(reg.Close)

	sig := &fakeSignaler{}
	b := NewBridge(reg, sig, func(int) time.Duration { return 3 * time.Second }, nil)
	reg.AddObserver(b)
	return b, reg, sig, clk
}

func request(title string) dbus.Request {
	return dbus.Request{
		AppName: "test-app",
		Title:   title,
		Body:    "body",
		Urgency: dbus.UrgencyNormal,
	}
}

func tracked(b *Bridge) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byToastID)
}

func TestBridge_NotifyCreatesToast(t *testing.T) {
	b, reg, _, _ := newTestBridge(t, 5)

	req := request("hello")
	req.Variant = model.VariantDanger
	req.AppIcon = "dialog-error"
	dbusID := b.Notify(req)
	require.NotZero(t, dbusID)

	toastID, ok := b.toastID(dbusID)
	require.True(t, ok)

	item, ok := reg.Get(toastID)
	require.True(t, ok)
	assert.Equal(t, "hello", item.Title)
	assert.Equal(t, "body", item.Description)
	assert.Equal(t, model.VariantDanger, item.Variant)
	assert.Equal(t, 3*time.Second, item.Duration)
	assert.Equal(t, "test-app", item.AppName)
	assert.Equal(t, "dialog-error", item.Icon)
}

func TestBridge_AllocatesIDs(t *testing.T) {
	b, _, _, _ := newTestBridge(t, 5)

	first := b.Notify(request("one"))
	second := b.Notify(request("two"))
	assert.Equal(t, uint32(1), first)
	assert.Equal(t, uint32(2), second)

	// An explicit replaces_id of an unknown notification is honoured and
	// later allocations skip it
	req := request("three")
	req.ReplacesID = 3
	assert.Equal(t, uint32(3), b.Notify(req))
	assert.Equal(t, uint32(4), b.Notify(request("four")))
}

func TestBridge_ExplicitTimeout(t *testing.T) {
	b, reg, _, _ := newTestBridge(t, 5)

	req := request("x")
	req.Timeout = 1500 * time.Millisecond
	dbusID := b.Notify(req)

	id, _ := b.toastID(dbusID)
	assert.Equal(t, 1500*time.Millisecond, reg.Duration(id))
}

func TestBridge_TimeoutFuncByUrgency(t *testing.T) {
	b, reg, _, _ := newTestBridge(t, 5)
	b.SetTimeoutFunc(func(urgency int) time.Duration {
		return time.Duration(urgency+1) * time.Second
	})

	req := request("x")
	req.Urgency = dbus.UrgencyCritical
	id, _ := b.toastID(b.Notify(req))
	assert.Equal(t, 3*time.Second, reg.Duration(id))
}

func TestBridge_ExpiryEmitsClosed(t *testing.T) {
	b, _, sig, clk := newTestBridge(t, 5)

	dbusID := b.Notify(request("x"))
	clk.Advance(3 * time.Second)

	assert.Equal(t, []closeSignal{{dbusID, dbus.CloseReasonExpired}}, sig.closed)
	assert.Equal(t, 0, tracked(b))
}

func TestBridge_EvictionEmitsClosed(t *testing.T) {
	b, _, sig, _ := newTestBridge(t, 1)

	first := b.Notify(request("first"))
	b.Notify(request("second"))

	assert.Equal(t, []closeSignal{{first, dbus.CloseReasonClosed}}, sig.closed)
	assert.Equal(t, 1, tracked(b))
}

func TestBridge_CloseNotification(t *testing.T) {
	b, reg, sig, _ := newTestBridge(t, 5)

	dbusID := b.Notify(request("x"))
	b.CloseNotification(dbusID)
	b.CloseNotification(dbusID)
	b.CloseNotification(99)

	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, []closeSignal{{dbusID, dbus.CloseReasonClosed}}, sig.closed)
}

func TestBridge_ReplaceDoesNotSignal(t *testing.T) {
	b, reg, sig, _ := newTestBridge(t, 5)

	dbusID := b.Notify(request("v1"))
	first, _ := b.toastID(dbusID)

	req := request("v2")
	req.ReplacesID = dbusID
	assert.Equal(t, dbusID, b.Notify(req))
	second, _ := b.toastID(dbusID)

	assert.NotEqual(t, first, second)
	assert.Empty(t, sig.closed)
	require.Equal(t, 1, reg.Len())
	assert.Equal(t, "v2", reg.Items()[0].Title)
	assert.Equal(t, 1, tracked(b))
}

func TestBridge_ActionInvokesAndDismisses(t *testing.T) {
	b, reg, sig, _ := newTestBridge(t, 5)

	req := request("x")
	req.Action = &dbus.Action{Key: "default", Label: "Open"}
	dbusID := b.Notify(req)

	id, _ := b.toastID(dbusID)
	item, _ := reg.Get(id)
	require.NotNil(t, item.Action)
	assert.Equal(t, "Open", item.Action.Label)

	require.True(t, reg.Invoke(id))
	assert.Equal(t, []actionSignal{{dbusID, "default"}}, sig.actions)
	assert.Equal(t, []closeSignal{{dbusID, dbus.CloseReasonDismissed}}, sig.closed)
}

func TestBridge_ResidentActionKeepsToast(t *testing.T) {
	b, reg, sig, _ := newTestBridge(t, 5)

	req := request("x")
	req.Action = &dbus.Action{Key: "default", Label: "Open"}
	req.Resident = true
	id, _ := b.toastID(b.Notify(req))

	require.True(t, reg.Invoke(id))
	assert.Len(t, sig.actions, 1)
	assert.Empty(t, sig.closed)
	assert.Equal(t, 1, reg.Len())
}

func TestBridge_PushHook(t *testing.T) {
	b, _, _, _ := newTestBridge(t, 5)

	var sounds []string
	b.SetPushHook(func(req dbus.Request, opts model.Options) {
		assert.NotEmpty(t, opts.ID)
		sounds = append(sounds, req.SoundFile)
	})

	req := request("done")
	req.SoundFile = "/tmp/done.wav"
	b.Notify(req)

	assert.Equal(t, []string{"/tmp/done.wav"}, sounds)
}

func TestBridge_DroppedWhenRegistryClosed(t *testing.T) {
	b, reg, sig, _ := newTestBridge(t, 5)
	reg.Close()

	assert.Zero(t, b.Notify(request("late")))
	assert.Equal(t, 0, tracked(b))
	assert.Empty(t, sig.closed)
}
