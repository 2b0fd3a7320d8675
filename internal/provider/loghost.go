package provider

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/registry"
)

// LogHost presents toasts as structured log lines. It is the host used when
// no container is given, e.g. a headless daemon.
type LogHost struct {
	mu       sync.Mutex
	logger   *slog.Logger
	position model.Position
	attached bool
	closed   bool
}

// NewLogHost creates a LogHost.
func NewLogHost(logger *slog.Logger) *LogHost {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHost{logger: logger}
}

// Attach subscribes the host to the registry's lifecycle.
func (h *LogHost) Attach(r *registry.Registry, position model.Position) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return &HostError{Message: "log host closed"}
	}
	if h.attached {
		return &HostError{Message: "log host already attached"}
	}
	h.attached = true
	h.position = position
	r.AddObserver(h)
	return nil
}

// Pushed logs a new toast.
func (h *LogHost) Pushed(item model.Item) {
	if h.isClosed() {
		return
	}
	h.logger.Info("toast",
		"id", item.ID,
		"variant", item.Variant,
		"title", item.Title,
		"description", item.DescriptionTruncated(120),
		"duration", item.Duration,
		"position", h.position,
	)
}

// Removed logs a toast leaving the screen.
func (h *LogHost) Removed(item model.Item, reason model.RemoveReason) {
	if h.isClosed() {
		return
	}
	h.logger.Info("toast closed", "id", item.ID, "reason", reason)
}

// Close stops logging.
func (h *LogHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *LogHost) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
