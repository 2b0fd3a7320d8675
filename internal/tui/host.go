package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/toasty/internal/gesture"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/registry"
)

// ErrAlreadyAttached is returned when a Host is attached twice.
var ErrAlreadyAttached = errors.New("terminal host already attached")

// Host renders a registry in the terminal. It implements provider.Host.
type Host struct {
	mu     sync.Mutex
	logger *slog.Logger
	opts   Options

	programOpts []tea.ProgramOption
	program     *tea.Program
	reg         *registry.Registry
	events      <-chan registry.Event
	done        chan struct{}
	err         error
}

// NewHost creates a terminal host. Extra program options are appended to
// the defaults (alternate screen, all-motion mouse reporting).
func NewHost(opts Options, logger *slog.Logger, programOpts ...tea.ProgramOption) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		logger:      logger,
		opts:        opts.withDefaults(),
		programOpts: programOpts,
		done:        make(chan struct{}),
	}
}

// Attach starts the terminal program for r.
func (h *Host) Attach(r *registry.Registry, position model.Position) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.program != nil {
		return ErrAlreadyAttached
	}

	events := r.Subscribe()
	m := New(r, position, h.opts)
	m.events = events

	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}, h.programOpts...)
	p := tea.NewProgram(m, opts...)

	h.program = p
	h.reg = r
	h.events = events

	go func() {
		_, err := p.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			err = fmt.Errorf("terminal host failed: %w", err)
		} else {
			err = nil
		}
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
		close(h.done)
	}()

	h.logger.Debug("terminal host attached", "position", position)
	return nil
}

// SetOptions updates gesture tuning and hover behaviour of a running host.
func (h *Host) SetOptions(cfg gesture.Config, pauseOnHover bool) {
	h.mu.Lock()
	h.opts.Gesture = cfg
	h.opts.PauseOnHover = pauseOnHover
	p := h.program
	h.mu.Unlock()

	if p != nil {
		p.Send(optionsMsg{gesture: cfg, pauseOnHover: pauseOnHover})
	}
}

// Done is closed when the terminal program exits, including when the
// user quits.
func (h *Host) Done() <-chan struct{} {
	return h.done
}

// Err returns the program's exit error once Done is closed.
func (h *Host) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Close stops the terminal program and restores the terminal.
func (h *Host) Close() error {
	h.mu.Lock()
	p := h.program
	r := h.reg
	events := h.events
	h.mu.Unlock()

	if p == nil {
		return nil
	}

	p.Quit()
	<-h.done
	r.Unsubscribe(events)
	return h.Err()
}
