// Package session holds per-chat presentation preferences. Preferences are
// session state, not account state: they live outside the usage ledger and
// are injected into handlers rather than held in globals.
package session

import (
	"context"
	"sync"
)

// Preferences stores the per-chat audio flag. Replies default to text; the
// flag switches them to synthesized voice messages.
type Preferences interface {
	AudioEnabled(ctx context.Context, chatID int64) (bool, error)
	SetAudioEnabled(ctx context.Context, chatID int64, enabled bool) error
	ToggleAudio(ctx context.Context, chatID int64) (bool, error)
}

// MemoryPreferences is an in-memory Preferences implementation used for tests
// and for running without Redis.
type MemoryPreferences struct {
	mu    sync.RWMutex
	audio map[int64]bool
}

// NewMemoryPreferences returns an empty in-memory preference store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{
		audio: make(map[int64]bool),
	}
}

// AudioEnabled reports whether audio replies are on for the chat.
func (m *MemoryPreferences) AudioEnabled(ctx context.Context, chatID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.audio[chatID], nil
}

// SetAudioEnabled stores the audio flag for the chat.
func (m *MemoryPreferences) SetAudioEnabled(ctx context.Context, chatID int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audio[chatID] = enabled
	return nil
}

// ToggleAudio flips the audio flag and returns the new value.
func (m *MemoryPreferences) ToggleAudio(ctx context.Context, chatID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := !m.audio[chatID]
	m.audio[chatID] = next
	return next, nil
}
