// Package provider mounts a toast registry together with the host that
// presents it, and binds the process-wide facade to it.
package provider

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/jmylchreest/toasty/internal/clock"
	"github.com/jmylchreest/toasty/internal/facade"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/registry"
)

// ErrNotMounted is returned when unmounting a provider twice.
var ErrNotMounted = errors.New("provider not mounted")

// Host presents the toasts of a registry. Attach is called once on mount;
// Close is only called on hosts the provider created itself.
type Host interface {
	Attach(r *registry.Registry, position model.Position) error
	Close() error
}

// HostError reports a failure to attach or close a host.
type HostError struct {
	Message string
	Cause   error
}

func (e *HostError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *HostError) Unwrap() error {
	return e.Cause
}

// Config configures a Provider.
type Config struct {
	Position model.Position
	Max      int

	// Host is the container toasts are presented in. When nil the provider
	// creates a LogHost, owns it and closes it on unmount.
	Host Host

	// Facade is bound to the mounted registry. Defaults to facade.Global.
	Facade *facade.Facade

	Clock  clock.Clock
	Logger *slog.Logger
}

// Provider owns a mounted registry.
type Provider struct {
	mu       sync.Mutex
	registry *registry.Registry
	host     Host
	ownsHost bool
	position model.Position
	release  func()
	logger   *slog.Logger
	mounted  bool
}

// Mount creates the registry, attaches it to the host and binds the facade.
func Mount(cfg Config) (*Provider, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Position == "" {
		cfg.Position = model.PositionTopRight
	}
	if cfg.Max <= 0 {
		cfg.Max = registry.DefaultMax
	}
	if cfg.Facade == nil {
		cfg.Facade = facade.Global
	}

	reg := registry.New(registry.Options{
		Max:    cfg.Max,
		Clock:  cfg.Clock,
		Logger: cfg.Logger.With("component", "registry"),
	})

	host := cfg.Host
	owns := false
	if host == nil {
		host = NewLogHost(cfg.Logger.With("component", "host"))
		owns = true
	}

	if err := host.Attach(reg, cfg.Position); err != nil {
		reg.Close()
		if owns {
			_ = host.Close()
		}
		return nil, &HostError{Message: "failed to attach host", Cause: err}
	}

	p := &Provider{
		registry: reg,
		host:     host,
		ownsHost: owns,
		position: cfg.Position,
		logger:   cfg.Logger,
		mounted:  true,
	}
	p.release = cfg.Facade.Bind(reg)

	cfg.Logger.Debug("provider mounted", "position", cfg.Position, "max", cfg.Max, "owns_host", owns)
	return p, nil
}

// Registry returns the mounted registry.
func (p *Provider) Registry() *registry.Registry {
	return p.registry
}

// Position returns the configured screen position.
func (p *Provider) Position() model.Position {
	return p.position
}

// Unmount unbinds the facade, clears the registry and disposes of an owned host.
func (p *Provider) Unmount() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.mounted {
		return ErrNotMounted
	}
	p.mounted = false

	p.release()
	p.registry.Close()

	if p.ownsHost {
		if err := p.host.Close(); err != nil {
			return &HostError{Message: "failed to close host", Cause: err}
		}
	}

	p.logger.Debug("provider unmounted")
	return nil
}
