package audio

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/model"
)

// ErrUnsupportedFormat is returned for sound files beep cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Sounder plays sound files. *Player is the production implementation.
type Sounder interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
	ClearCache()
	Close()
}

// hint is a per-toast sound override, set before the toast is pushed.
type hint struct {
	path     string
	suppress bool
}

// Manager plays a sound for each new toast. It is registered as a registry
// observer; the sound follows the toast's variant unless a hint was set.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	sounder Sounder
	config  *config.Config
	hints   map[string]hint
	onError func(err error)
}

// NewManager creates a Manager backed by a speaker Player.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return NewManagerWithSounder(cfg, NewPlayer(logger), logger)
}

// NewManagerWithSounder creates a Manager backed by s.
func NewManagerWithSounder(cfg *config.Config, s Sounder, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m := &Manager{
		logger:  logger,
		sounder: s,
		hints:   make(map[string]hint),
	}
	m.UpdateConfig(cfg)
	return m
}

// SetErrorCallback sets the callback invoked when a sound fails to play.
func (m *Manager) SetErrorCallback(callback func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = callback
}

// UpdateConfig applies a new configuration, dropping cached sounds and
// preloading the configured ones.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.sounder.ClearCache()
	m.sounder.SetVolume(float64(cfg.Audio.Volume) / 100.0)

	if !cfg.Audio.Enabled {
		return
	}
	for _, v := range model.ValidVariants() {
		path := cfg.SoundForVariant(v)
		if err := m.sounder.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "variant", v, "path", path, "error", err)
		}
	}
}

// Enabled reports whether sounds are played.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Audio.Enabled
}

// SetHint overrides the sound of the toast with the given id. A non-empty
// path replaces the variant sound; suppress silences it.
func (m *Manager) SetHint(id, path string, suppress bool) {
	if path == "" && !suppress {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hints[id] = hint{path: path, suppress: suppress}
}

// PlayForVariant plays the sound configured for v.
func (m *Manager) PlayForVariant(v model.Variant) error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if !cfg.Audio.Enabled {
		return nil
	}
	path := cfg.SoundForVariant(v)
	if path == "" {
		m.logger.Debug("no sound configured for variant", "variant", v)
		return nil
	}
	return m.sounder.Play(path)
}

// PlayFile plays a specific sound file.
func (m *Manager) PlayFile(path string) error {
	if !m.Enabled() {
		return nil
	}
	return m.sounder.Play(path)
}

// Pushed implements registry.Observer.
func (m *Manager) Pushed(item model.Item) {
	m.mu.Lock()
	h, ok := m.hints[item.ID]
	delete(m.hints, item.ID)
	onError := m.onError
	m.mu.Unlock()

	var err error
	switch {
	case ok && h.suppress:
		return
	case ok && h.path != "":
		err = m.PlayFile(h.path)
	default:
		err = m.PlayForVariant(item.Variant)
	}

	if err != nil {
		m.logger.Warn("failed to play sound", "id", item.ID, "error", err)
		if onError != nil {
			onError(err)
		}
	}
}

// Removed implements registry.Observer.
func (m *Manager) Removed(item model.Item, _ model.RemoveReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hints, item.ID)
}

// Close releases the audio device.
func (m *Manager) Close() {
	m.sounder.Close()
	m.logger.Debug("audio manager stopped")
}
