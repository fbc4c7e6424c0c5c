package session

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/compliment-hotline/compliment-bot/pkg/redis"
)

func setupRedisPreferences(t *testing.T) *RedisPreferences {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisPreferences(&pkgredis.Client{Client: client})
}

func TestRedisPreferences_DefaultsToTextReplies(t *testing.T) {
	prefs := setupRedisPreferences(t)

	enabled, err := prefs.AudioEnabled(context.Background(), 100)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestRedisPreferences_ToggleRoundTrip(t *testing.T) {
	prefs := setupRedisPreferences(t)
	ctx := context.Background()

	enabled, err := prefs.ToggleAudio(ctx, 100)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = prefs.AudioEnabled(ctx, 100)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = prefs.ToggleAudio(ctx, 100)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestRedisPreferences_ChatsAreIndependent(t *testing.T) {
	prefs := setupRedisPreferences(t)
	ctx := context.Background()

	require.NoError(t, prefs.SetAudioEnabled(ctx, 1, true))

	enabled, err := prefs.AudioEnabled(ctx, 2)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestMemoryPreferences_ToggleRoundTrip(t *testing.T) {
	prefs := NewMemoryPreferences()
	ctx := context.Background()

	enabled, err := prefs.ToggleAudio(ctx, 7)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, prefs.SetAudioEnabled(ctx, 7, false))

	enabled, err = prefs.AudioEnabled(ctx, 7)
	require.NoError(t, err)
	assert.False(t, enabled)
}
