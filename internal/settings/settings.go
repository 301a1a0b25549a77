// Package settings holds user preferences passed explicitly to consumers.
package settings

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// SoundKey is the preference key for reward sound effects.
const SoundKey = "soundEnabled"

// PreferenceStore persists string preferences.
type PreferenceStore interface {
	Preference(ctx context.Context, key string) (value string, ok bool, err error)
	SetPreference(ctx context.Context, key, value string) error
}

// Settings caches preferences loaded from a PreferenceStore.
type Settings struct {
	store PreferenceStore

	mu    sync.RWMutex
	sound bool
}

// Load reads the preferences. Sound is on unless stored otherwise.
func Load(ctx context.Context, store PreferenceStore) (*Settings, error) {
	s := &Settings{store: store, sound: true}
	if store == nil {
		return s, nil
	}
	raw, ok, err := store.Preference(ctx, SoundKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", SoundKey, err)
	}
	if ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", SoundKey, raw, err)
		}
		s.sound = v
	}
	return s, nil
}

// SoundEnabled reports whether sound effects should play.
func (s *Settings) SoundEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sound
}

// SetSoundEnabled updates and persists the sound preference.
func (s *Settings) SetSoundEnabled(ctx context.Context, on bool) error {
	if s.store != nil {
		if err := s.store.SetPreference(ctx, SoundKey, strconv.FormatBool(on)); err != nil {
			return fmt.Errorf("failed to save %s: %w", SoundKey, err)
		}
	}
	s.mu.Lock()
	s.sound = on
	s.mu.Unlock()
	return nil
}

// ToggleSound flips the sound preference and returns the new value.
func (s *Settings) ToggleSound(ctx context.Context) (bool, error) {
	next := !s.SoundEnabled()
	if err := s.SetSoundEnabled(ctx, next); err != nil {
		return !next, err
	}
	return next, nil
}

// Chime rings the terminal bell when sound is enabled.
type Chime struct {
	w        io.Writer
	settings *Settings
}

// NewChime creates a chime writing to w.
func NewChime(w io.Writer, settings *Settings) *Chime {
	return &Chime{w: w, settings: settings}
}

// Play rings the bell and reports whether it did.
func (c *Chime) Play() bool {
	if c == nil || c.w == nil || c.settings == nil || !c.settings.SoundEnabled() {
		return false
	}
	if _, err := io.WriteString(c.w, "\a"); err != nil {
		return false
	}
	return true
}
