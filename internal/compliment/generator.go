package compliment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	errors "github.com/compliment-hotline/compliment-bot/internal/errors"
	"github.com/compliment-hotline/compliment-bot/pkg/metrics"
)

const systemPrompt = "You are a master at giving amazing compliments that people love and cherish."

// Generator produces compliments through an OpenAI-compatible
// chat-completions API.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	log         *slog.Logger
}

// GeneratorConfig holds the generation client settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// NewGenerator creates a compliment generator from config.
func NewGenerator(cfg GeneratorConfig, log *slog.Logger) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	if log == nil {
		log = slog.Default()
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		log:         log,
	}
}

// Generate writes a fresh compliment for the category. Failures are wrapped
// as retryable generation errors.
func (g *Generator) Generate(ctx context.Context, category Category) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: category.Prompt()},
		},
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.RecordGeneration("error", duration, 0)
		g.log.Error("compliment generation failed",
			slog.String("category", category.Key),
			slog.Any("error", err),
		)
		return "", errors.NewGenerationError(fmt.Errorf("chat completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		metrics.RecordGeneration("error", duration, resp.Usage.TotalTokens)
		return "", errors.NewGenerationError(fmt.Errorf("empty completion response"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		metrics.RecordGeneration("error", duration, resp.Usage.TotalTokens)
		return "", errors.NewGenerationError(fmt.Errorf("blank completion content"))
	}

	metrics.RecordGeneration("success", duration, resp.Usage.TotalTokens)

	return text, nil
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	return nil
}
