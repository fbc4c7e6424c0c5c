package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Preference keys expire after a month of inactivity; an expired flag simply
// falls back to the text default.
const audioTTL = 30 * 24 * time.Hour

// KV is the key-value surface the Redis store needs. Both pkg/redis.Client
// and its metrics wrapper satisfy it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisPreferences is the Redis-backed Preferences implementation.
type RedisPreferences struct {
	kv KV
}

// NewRedisPreferences constructs a preference store over the provided client.
func NewRedisPreferences(kv KV) *RedisPreferences {
	return &RedisPreferences{kv: kv}
}

// AudioEnabled reports whether audio replies are on for the chat. A missing
// key means the default (text replies).
func (r *RedisPreferences) AudioEnabled(ctx context.Context, chatID int64) (bool, error) {
	value, err := r.kv.Get(ctx, audioKey(chatID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get audio preference: %w", err)
	}

	return value == "1", nil
}

// SetAudioEnabled stores the audio flag for the chat.
func (r *RedisPreferences) SetAudioEnabled(ctx context.Context, chatID int64, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}

	if err := r.kv.Set(ctx, audioKey(chatID), value, audioTTL); err != nil {
		return fmt.Errorf("set audio preference: %w", err)
	}

	return nil
}

// ToggleAudio flips the audio flag and returns the new value.
func (r *RedisPreferences) ToggleAudio(ctx context.Context, chatID int64) (bool, error) {
	current, err := r.AudioEnabled(ctx, chatID)
	if err != nil {
		return false, err
	}

	next := !current
	if err := r.SetAudioEnabled(ctx, chatID, next); err != nil {
		return false, err
	}

	return next, nil
}

func audioKey(chatID int64) string {
	return fmt.Sprintf("session:audio:%d", chatID)
}
