package speech

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errors "github.com/compliment-hotline/compliment-bot/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSynthesizer_Synthesize(t *testing.T) {
	audio := []byte{0xFF, 0xFB, 0x90, 0x00}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/test-voice", r.URL.Path)
		assert.Equal(t, "mp3_22050_32", r.URL.Query().Get("output_format"))
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))

		var req struct {
			Text    string `json:"text"`
			ModelID string `json:"model_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "You are wonderful.", req.Text)
		assert.Equal(t, "test-model", req.ModelID)

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(audio)
	}))
	defer server.Close()

	synth := NewSynthesizer(Config{
		APIKey:  "secret",
		BaseURL: server.URL,
		VoiceID: "test-voice",
		ModelID: "test-model",
	}, testLogger())

	got, err := synth.Synthesize(context.Background(), "You are wonderful.")
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestSynthesizer_SynthesizeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer server.Close()

	synth := NewSynthesizer(Config{
		APIKey:  "wrong",
		BaseURL: server.URL,
		VoiceID: "test-voice",
		ModelID: "test-model",
	}, testLogger())

	_, err := synth.Synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err))
}

func TestSynthesizer_SynthesizeEmptyAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
	}))
	defer server.Close()

	synth := NewSynthesizer(Config{
		APIKey:  "secret",
		BaseURL: server.URL,
		VoiceID: "test-voice",
		ModelID: "test-model",
	}, testLogger())

	_, err := synth.Synthesize(context.Background(), "hello")
	require.Error(t, err)
}
