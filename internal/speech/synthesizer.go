// Package speech converts generated compliments to voice audio through the
// ElevenLabs text-to-speech API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	errors "github.com/compliment-hotline/compliment-bot/internal/errors"
	"github.com/compliment-hotline/compliment-bot/pkg/metrics"
)

const (
	outputFormat   = "mp3_22050_32"
	requestTimeout = 30 * time.Second
)

// Synthesizer is an ElevenLabs text-to-speech client.
type Synthesizer struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	voiceID    string
	modelID    string
	log        *slog.Logger
}

// Config holds the text-to-speech client settings.
type Config struct {
	APIKey  string
	BaseURL string
	VoiceID string
	ModelID string
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewSynthesizer creates a text-to-speech client from config.
func NewSynthesizer(cfg Config, log *slog.Logger) *Synthesizer {
	if log == nil {
		log = slog.Default()
	}

	return &Synthesizer{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		modelID:    cfg.ModelID,
		log:        log,
	}
}

// Synthesize converts text to an MP3 byte stream. Failures are wrapped as
// retryable synthesis errors.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: s.modelID,
		VoiceSettings: voiceSettings{
			Stability:       0.0,
			SimilarityBoost: 1.0,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", s.baseURL, s.voiceID, outputFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	start := time.Now()

	resp, err := s.httpClient.Do(req)

	duration := time.Since(start)

	if err != nil {
		metrics.RecordSynthesis("error", duration)
		s.log.Error("speech synthesis request failed", slog.Any("error", err))
		return nil, errors.NewSynthesisError(err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		metrics.RecordSynthesis("error", duration)
		s.log.Error("speech synthesis rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, errors.NewSynthesisError(fmt.Errorf("synthesis API status %d", resp.StatusCode))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordSynthesis("error", duration)
		return nil, errors.NewSynthesisError(fmt.Errorf("read audio stream: %w", err))
	}

	if len(audio) == 0 {
		metrics.RecordSynthesis("error", duration)
		return nil, errors.NewSynthesisError(fmt.Errorf("empty audio stream"))
	}

	metrics.RecordSynthesis("success", duration)

	return audio, nil
}
