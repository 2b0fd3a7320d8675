package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/clock"
	"github.com/jmylchreest/toasty/internal/model"
)

// internalDuration is how long the daemon's own toasts stay up.
const internalDuration = 5 * time.Second

// NotificationLevel is the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages.
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for recoverable problems.
	NotificationLevelWarning
	// NotificationLevelError is for failures.
	NotificationLevelError
)

// String returns the level name.
func (l NotificationLevel) String() string {
	switch l {
	case NotificationLevelInfo:
		return "info"
	case NotificationLevelWarning:
		return "warning"
	case NotificationLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Variant returns the toast variant used for the level.
func (l NotificationLevel) Variant() model.Variant {
	switch l {
	case NotificationLevelWarning:
		return model.VariantWarning
	case NotificationLevelError:
		return model.VariantDanger
	default:
		return model.VariantDefault
	}
}

// Pusher accepts toasts. *facade.Facade satisfies it.
type Pusher interface {
	Push(opts model.Options) string
}

// InternalNotifier raises toasts about the daemon's own events.
// The same key is not repeated within the minimum interval.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	clock  clock.Clock
	pusher Pusher

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates an InternalNotifier pushing to p.
func NewInternalNotifier(p Pusher, clk clock.Clock, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &InternalNotifier{
		logger:         logger,
		clock:          clk,
		pusher:         p,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify raises a toast unless disabled or rate-limited. It reports
// whether a toast was pushed.
func (n *InternalNotifier) Notify(key, title, body string, level NotificationLevel) bool {
	n.mu.Lock()
	if !n.enabled || n.pusher == nil {
		n.mu.Unlock()
		return false
	}

	now := n.clock.Now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "title", title)
		return false
	}
	n.lastNotifyTime[key] = now
	pusher := n.pusher
	n.mu.Unlock()

	n.logger.Debug("sending internal notification", "key", key, "title", title, "level", level)

	// Pushed outside the lock: the push may call back into observers
	id := pusher.Push(model.Options{
		Title:       title,
		Description: body,
		Variant:     level.Variant(),
		Duration:    model.DurationOf(internalDuration),
		AppName:     "toastyd",
	})
	return id != ""
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded",
		"toastyd configuration has been reloaded.", NotificationLevelInfo)
}

// NotifyConfigError reports a config file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error",
		"Failed to reload configuration: "+err.Error(), NotificationLevelWarning)
}

// NotifyStartup reports that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify("startup", "toastyd Started",
		"Toast daemon v"+version+" is now running.", NotificationLevelInfo)
}

// NotifyAudioError reports a sound that could not be played.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify("audio-error", "Audio Error",
		"Failed to play notification sound: "+err.Error(), NotificationLevelWarning)
}

// NotifyDBusUnavailable reports that the notification bus name could not be taken.
func (n *InternalNotifier) NotifyDBusUnavailable(err error) {
	n.Notify("dbus-error", "D-Bus Unavailable",
		"Desktop notifications will not be shown: "+err.Error(), NotificationLevelError)
}
