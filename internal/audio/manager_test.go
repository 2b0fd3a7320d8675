package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/model"
)

type fakeSounder struct {
	played    []string
	preloaded []string
	volume    float64
	cleared   int
	closed    bool
	err       error
}

func (s *fakeSounder) Play(path string) error {
	s.played = append(s.played, path)
	return s.err
}

func (s *fakeSounder) Preload(path string) error {
	if path != "" {
		s.preloaded = append(s.preloaded, path)
	}
	return nil
}

func (s *fakeSounder) SetVolume(v float64) { s.volume = v }
func (s *fakeSounder) ClearCache()         { s.cleared++ }
func (s *fakeSounder) Close()              { s.closed = true }

func audioConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Volume = 50
	cfg.Audio.Sounds.Default = "/sounds/default.ogg"
	cfg.Audio.Sounds.Danger = "/sounds/danger.wav"
	return cfg
}

func TestManager_PlaysVariantSound(t *testing.T) {
	s := &fakeSounder{}
	m := NewManagerWithSounder(audioConfig(), s, nil)

	assert.InDelta(t, 0.5, s.volume, 0.001)
	assert.Contains(t, s.preloaded, "/sounds/danger.wav")

	m.Pushed(model.Item{ID: "a", Variant: model.VariantDanger})
	m.Pushed(model.Item{ID: "b", Variant: model.VariantSuccess})

	assert.Equal(t, []string{"/sounds/danger.wav", "/sounds/default.ogg"}, s.played)
}

func TestManager_Disabled(t *testing.T) {
	s := &fakeSounder{}
	cfg := audioConfig()
	cfg.Audio.Enabled = false
	m := NewManagerWithSounder(cfg, s, nil)

	m.Pushed(model.Item{ID: "a", Variant: model.VariantDanger})
	require.NoError(t, m.PlayFile("/x.wav"))

	assert.Empty(t, s.played)
	assert.Empty(t, s.preloaded)
	assert.False(t, m.Enabled())
}

func TestManager_Hints(t *testing.T) {
	s := &fakeSounder{}
	m := NewManagerWithSounder(audioConfig(), s, nil)

	m.SetHint("custom", "/sounds/bell.oga", false)
	m.SetHint("quiet", "", true)

	m.Pushed(model.Item{ID: "custom", Variant: model.VariantDanger})
	m.Pushed(model.Item{ID: "quiet", Variant: model.VariantDanger})

	// Hints are consumed by the first push
	m.Pushed(model.Item{ID: "quiet", Variant: model.VariantDefault})

	assert.Equal(t, []string{"/sounds/bell.oga", "/sounds/default.ogg"}, s.played)
}

func TestManager_HintDroppedOnRemove(t *testing.T) {
	s := &fakeSounder{}
	m := NewManagerWithSounder(audioConfig(), s, nil)

	m.SetHint("gone", "", true)
	m.Removed(model.Item{ID: "gone"}, model.ReasonEvicted)
	m.Pushed(model.Item{ID: "gone", Variant: model.VariantDefault})

	assert.Equal(t, []string{"/sounds/default.ogg"}, s.played)
}

func TestManager_ErrorCallback(t *testing.T) {
	s := &fakeSounder{err: errors.New("no device")}
	m := NewManagerWithSounder(audioConfig(), s, nil)

	var got error
	m.SetErrorCallback(func(err error) { got = err })
	m.Pushed(model.Item{ID: "a", Variant: model.VariantDefault})

	assert.EqualError(t, got, "no device")
}

func TestManager_UpdateConfig(t *testing.T) {
	s := &fakeSounder{}
	m := NewManagerWithSounder(config.DefaultConfig(), s, nil)
	require.False(t, m.Enabled())

	m.UpdateConfig(audioConfig())
	assert.True(t, m.Enabled())
	assert.Equal(t, 2, s.cleared)

	m.Close()
	assert.True(t, s.closed)
}

func TestPlayer_UnsupportedFormat(t *testing.T) {
	p := NewPlayer(nil)
	path := filepath.Join(t.TempDir(), "sound.flac")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	err := p.Preload(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPlayer_MissingFile(t *testing.T) {
	p := NewPlayer(nil)
	assert.Error(t, p.Play("/nonexistent/sound.wav"))
	assert.NoError(t, p.Play(""))
}

func TestPlayer_Volume(t *testing.T) {
	p := NewPlayer(nil)
	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())

	assert.InDelta(t, -1.0, volumeExponent(0.5), 0.0001)
	assert.Equal(t, 0.0, volumeExponent(1))
}
