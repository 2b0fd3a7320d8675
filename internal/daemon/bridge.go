package daemon

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/model"
)

var _ dbus.Backend = (*Bridge)(nil)

// Toaster is the part of the registry the bridge drives.
type Toaster interface {
	Push(opts model.Options) string
	Remove(id string)
	Dismiss(id string)
}

// Signaler reports toast outcomes back to D-Bus clients.
type Signaler interface {
	EmitNotificationClosed(id uint32, reason dbus.CloseReason) error
	EmitActionInvoked(id uint32, actionKey string) error
}

// TimeoutFunc picks a lifetime for notifications that did not ask for one.
type TimeoutFunc func(urgency int) time.Duration

// Bridge turns freedesktop notifications into toasts and reports their
// removal back to the sender. It is the D-Bus server's backend and a
// registry observer; a D-Bus id is live exactly while its toast is shown.
type Bridge struct {
	mu     sync.RWMutex
	logger *slog.Logger

	toaster  Toaster
	signaler Signaler
	timeout  TimeoutFunc

	lastID    uint32
	byToastID map[string]uint32
	byDBusID  map[uint32]string

	// toasts being replaced by a Notify with replaces_id; their removal
	// must not be reported as a close
	replacing map[string]bool

	onPush func(req dbus.Request, opts model.Options)
}

// NewBridge creates a Bridge.
func NewBridge(toaster Toaster, signaler Signaler, timeout TimeoutFunc, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout == nil {
		timeout = func(int) time.Duration { return model.DefaultDuration }
	}
	return &Bridge{
		logger:    logger,
		toaster:   toaster,
		signaler:  signaler,
		timeout:   timeout,
		byToastID: make(map[string]uint32),
		byDBusID:  make(map[uint32]string),
		replacing: make(map[string]bool),
	}
}

// SetTimeoutFunc replaces the lifetime policy, e.g. after a config reload.
func (b *Bridge) SetTimeoutFunc(timeout TimeoutFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeout = timeout
}

// SetPushHook registers a callback run with each request's toast options
// just before they are pushed. The daemon uses it to pass sound hints to
// the audio manager.
func (b *Bridge) SetPushHook(hook func(req dbus.Request, opts model.Options)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPush = hook
}

// Notify implements dbus.Backend. A request with replaces_id takes over
// that id; otherwise a fresh one is allocated.
func (b *Bridge) Notify(req dbus.Request) uint32 {
	b.mu.Lock()
	dbusID := req.ReplacesID
	if dbusID == 0 {
		dbusID = b.nextIDLocked()
	}
	oldToast, replacing := b.byDBusID[dbusID]
	if replacing {
		b.replacing[oldToast] = true
		delete(b.byToastID, oldToast)
		delete(b.byDBusID, dbusID)
	}
	timeout := b.timeout
	hook := b.onPush
	b.mu.Unlock()

	if replacing {
		b.toaster.Remove(oldToast)
	}

	opts := req.Options(timeout(req.Urgency))
	opts.ID = model.NewID()
	if req.Action != nil {
		opts.Action = b.action(dbusID, *req.Action, req.Resident)
	}

	// Register before pushing: a toast can be evicted or expire inside Push.
	b.mu.Lock()
	b.byToastID[opts.ID] = dbusID
	b.byDBusID[dbusID] = opts.ID
	b.mu.Unlock()

	if hook != nil {
		hook(req, opts)
	}

	if id := b.toaster.Push(opts); id == "" {
		b.forget(opts.ID)
		b.logger.Warn("notification dropped", "dbus_id", dbusID, "app", req.AppName)
		return 0
	}

	b.logger.Debug("notification shown", "dbus_id", dbusID, "id", opts.ID, "variant", opts.Variant)
	return dbusID
}

// CloseNotification implements dbus.Backend. Ids that are no longer shown
// are ignored.
func (b *Bridge) CloseNotification(dbusID uint32) {
	if toastID, ok := b.toastID(dbusID); ok {
		b.toaster.Remove(toastID)
	}
}

// Pushed implements registry.Observer.
func (b *Bridge) Pushed(model.Item) {}

// Removed implements registry.Observer and emits NotificationClosed once
// per D-Bus id.
func (b *Bridge) Removed(item model.Item, reason model.RemoveReason) {
	b.mu.Lock()
	if b.replacing[item.ID] {
		delete(b.replacing, item.ID)
		b.mu.Unlock()
		return
	}
	dbusID, ok := b.byToastID[item.ID]
	if ok {
		delete(b.byToastID, item.ID)
		delete(b.byDBusID, dbusID)
	}
	b.mu.Unlock()

	if !ok || b.signaler == nil {
		return
	}

	if err := b.signaler.EmitNotificationClosed(dbusID, dbus.CloseReasonFor(reason)); err != nil {
		b.logSignalError("failed to emit close signal", dbusID, err)
	}
}

func (b *Bridge) toastID(dbusID uint32) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.byDBusID[dbusID]
	return id, ok
}

// nextIDLocked allocates a D-Bus id that is not on screen. Zero is reserved.
func (b *Bridge) nextIDLocked() uint32 {
	for {
		b.lastID++
		if b.lastID == 0 {
			continue
		}
		if _, taken := b.byDBusID[b.lastID]; !taken {
			return b.lastID
		}
	}
}

func (b *Bridge) action(dbusID uint32, a dbus.Action, resident bool) *model.Action {
	return &model.Action{
		Label: a.Label,
		OnClick: func(toastID string) {
			if b.signaler != nil {
				if err := b.signaler.EmitActionInvoked(dbusID, a.Key); err != nil {
					b.logSignalError("failed to emit action signal", dbusID, err)
				}
			}
			// Non-resident notifications are closed after their action runs
			if !resident {
				b.toaster.Dismiss(toastID)
			}
		},
	}
}

func (b *Bridge) forget(toastID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if dbusID, ok := b.byToastID[toastID]; ok {
		delete(b.byDBusID, dbusID)
		delete(b.byToastID, toastID)
	}
}

func (b *Bridge) logSignalError(msg string, dbusID uint32, err error) {
	if errors.Is(err, dbus.ErrNotConnected) {
		b.logger.Debug(msg, "dbus_id", dbusID, "error", err)
		return
	}
	b.logger.Warn(msg, "dbus_id", dbusID, "error", err)
}
