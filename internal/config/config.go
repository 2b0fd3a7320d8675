// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toasty/internal/model"
)

// Default configuration values.
const (
	DefaultMax            = 5
	MaxToasts             = 50
	DefaultVolume         = 80
	DefaultCommitDistance = 80.0
	DefaultVerticalRatio  = 1.2
	DefaultVerticalSlop   = 8.0
	DefaultListen         = "127.0.0.1:7878"
)

// Validation errors.
var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidMax      = errors.New("invalid max")
	ErrInvalidVolume   = errors.New("invalid volume")
	ErrInvalidGesture  = errors.New("invalid gesture settings")
	ErrInvalidDuration = errors.New("invalid duration")
)

// Config is the configuration for toastyd.
// Loaded from ~/.config/toasty/toastyd.toml
type Config struct {
	Toasts   ToastsConfig   `toml:"toasts"`
	Gesture  GestureConfig  `toml:"gesture"`
	Behavior BehaviorConfig `toml:"behavior"`
	Audio    AudioConfig    `toml:"audio"`
	HTTP     HTTPConfig     `toml:"http"`
	DBus     DBusConfig     `toml:"dbus"`
}

// ToastsConfig contains placement, capacity and lifetime settings.
type ToastsConfig struct {
	Position        string        `toml:"position"`         // "top-right", "bottom-center", etc.
	Max             int           `toml:"max"`              // Maximum simultaneous toasts
	DefaultDuration Duration      `toml:"default_duration"` // Lifetime when the sender gives none
	Timeouts        TimeoutConfig `toml:"timeouts"`
}

// TimeoutConfig contains lifetimes per D-Bus urgency level, used when a
// notification arrives without its own expire_timeout. Zero falls back to
// default_duration.
type TimeoutConfig struct {
	Low      Duration `toml:"low"`
	Normal   Duration `toml:"normal"`
	Critical Duration `toml:"critical"`
}

// GestureConfig tunes swipe-to-dismiss, in host units.
type GestureConfig struct {
	CommitDistance float64 `toml:"commit_distance"`
	VerticalRatio  float64 `toml:"vertical_ratio"`
	VerticalSlop   float64 `toml:"vertical_slop"`
}

// BehaviorConfig contains behavior settings.
type BehaviorConfig struct {
	PauseOnHover bool `toml:"pause_on_hover"` // Pause countdown when the pointer hovers
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-variant sound file paths.
type SoundConfig struct {
	Default string `toml:"default"`
	Success string `toml:"success"`
	Warning string `toml:"warning"`
	Danger  string `toml:"danger"`
}

// HTTPConfig contains the HTTP ingress and metrics listener.
type HTTPConfig struct {
	Listen string `toml:"listen"` // Empty disables the listener
}

// DBusConfig contains freedesktop notification server settings.
type DBusConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Toasts: ToastsConfig{
			Position:        string(model.PositionTopRight),
			Max:             DefaultMax,
			DefaultDuration: Duration(model.DefaultDuration),
			Timeouts: TimeoutConfig{
				Low:      Duration(model.DefaultDuration),
				Normal:   Duration(model.DefaultDuration),
				Critical: Duration(10 * time.Second),
			},
		},
		Gesture: GestureConfig{
			CommitDistance: DefaultCommitDistance,
			VerticalRatio:  DefaultVerticalRatio,
			VerticalSlop:   DefaultVerticalSlop,
		},
		Behavior: BehaviorConfig{
			PauseOnHover: true,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		HTTP: HTTPConfig{
			Listen: DefaultListen,
		},
		DBus: DBusConfig{
			Enabled: true,
		},
	}
}

// ConfigPath returns the path to the daemon config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toasty", "toastyd.toml")
}

// Load loads the configuration from path, or from ConfigPath if path is
// empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(model.ValidPositions(), model.Position(c.Toasts.Position)) {
		return fmt.Errorf("%w %q, must be one of: %v", ErrInvalidPosition, c.Toasts.Position, model.ValidPositions())
	}

	if c.Toasts.Max < 1 || c.Toasts.Max > MaxToasts {
		return fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidMax, MaxToasts, c.Toasts.Max)
	}

	for name, d := range map[string]Duration{
		"default_duration":  c.Toasts.DefaultDuration,
		"timeouts.low":      c.Toasts.Timeouts.Low,
		"timeouts.normal":   c.Toasts.Timeouts.Normal,
		"timeouts.critical": c.Toasts.Timeouts.Critical,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidDuration, name)
		}
	}

	if c.Gesture.CommitDistance <= 0 || c.Gesture.VerticalRatio <= 0 || c.Gesture.VerticalSlop < 0 {
		return fmt.Errorf("%w: commit_distance and vertical_ratio must be positive, vertical_slop non-negative", ErrInvalidGesture)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("%w: must be between 0 and 100, got %d", ErrInvalidVolume, c.Audio.Volume)
	}

	return nil
}

// Position returns the configured position.
func (c *Config) Position() model.Position {
	return model.Position(c.Toasts.Position)
}

// TimeoutForUrgency returns the lifetime for a D-Bus urgency level
// (0 low, 1 normal, 2 critical).
func (c *Config) TimeoutForUrgency(urgency int) time.Duration {
	var d Duration
	switch urgency {
	case 0:
		d = c.Toasts.Timeouts.Low
	case 2:
		d = c.Toasts.Timeouts.Critical
	default:
		d = c.Toasts.Timeouts.Normal
	}
	if d <= 0 {
		return c.Toasts.DefaultDuration.Duration()
	}
	return d.Duration()
}

// SoundForVariant returns the sound file path for the given variant,
// falling back to the default sound. Expands ~ to the home directory.
func (c *Config) SoundForVariant(v model.Variant) string {
	var path string
	switch v {
	case model.VariantSuccess:
		path = c.Audio.Sounds.Success
	case model.VariantWarning:
		path = c.Audio.Sounds.Warning
	case model.VariantDanger:
		path = c.Audio.Sounds.Danger
	}
	if path == "" {
		path = c.Audio.Sounds.Default
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
