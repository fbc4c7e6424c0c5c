package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/compliment-hotline/compliment-bot/internal/compliment"
	errors "github.com/compliment-hotline/compliment-bot/internal/errors"
	"github.com/compliment-hotline/compliment-bot/internal/ledger"
	"github.com/compliment-hotline/compliment-bot/internal/session"
	"github.com/compliment-hotline/compliment-bot/internal/speech"
)

// ComplimentDeps bundles everything a category handler needs.
type ComplimentDeps struct {
	Ledger        *ledger.Service
	Generator     *compliment.Generator
	Synthesizer   *speech.Synthesizer
	Prefs         session.Preferences
	FreeAllowance int64
	CreditCost    int64
	Log           *slog.Logger
}

// NewComplimentHandler returns a handler for one compliment category. The
// interaction is charged before generation; a failed generation is surfaced
// to the user but the charge stands.
func NewComplimentHandler(category compliment.Category, deps ComplimentDeps) Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		sender := c.Sender()
		if sender == nil {
			log.Warn("compliment handler invoked without sender", slog.String("category", category.Key))
			return nil
		}

		ctx := context.Background()

		consumption, err := deps.Ledger.TryConsume(ctx, sender.ID, deps.FreeAllowance, deps.CreditCost)
		if err != nil {
			return err
		}

		if !consumption.Authorized {
			message := fmt.Sprintf(
				"💔 You have used all your free interactions and have no credits left.\n\n"+
					"Free compliments remaining: %d\nCredits: %d\n\n"+
					"Tap 🎁 Free Credits to refresh your free compliments.",
				consumption.FreeRemaining,
				consumption.Credits,
			)
			return c.Send(message)
		}

		var text string
		err = errors.WithRetry(ctx, func() error {
			generated, genErr := deps.Generator.Generate(ctx, category)
			if genErr != nil {
				return genErr
			}
			text = generated
			return nil
		})
		if err != nil {
			log.Error("compliment generation failed after retries",
				slog.Int64("user_id", sender.ID),
				slog.String("category", category.Key),
				slog.Any("error", err),
			)
			return err
		}

		if sent := sendVoice(ctx, c, deps, text, log); sent {
			return nil
		}

		return sendChunked(c, text)
	}
}

// sendVoice delivers the compliment as a voice message when the chat has
// audio enabled. Any failure falls back to text.
func sendVoice(ctx context.Context, c telebot.Context, deps ComplimentDeps, text string, log *slog.Logger) bool {
	if deps.Synthesizer == nil || deps.Prefs == nil || c.Chat() == nil {
		return false
	}

	chatID := c.Chat().ID

	enabled, err := deps.Prefs.AudioEnabled(ctx, chatID)
	if err != nil {
		log.Warn("audio preference lookup failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return false
	}
	if !enabled {
		return false
	}

	var audio []byte
	err = errors.WithRetry(ctx, func() error {
		synthesized, synthErr := deps.Synthesizer.Synthesize(ctx, text)
		if synthErr != nil {
			return synthErr
		}
		audio = synthesized
		return nil
	})
	if err != nil {
		log.Warn("speech synthesis failed, falling back to text",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
		return false
	}

	voice := &telebot.Voice{File: telebot.FromReader(bytes.NewReader(audio))}
	if sendErr := c.Send(voice); sendErr != nil {
		log.Warn("voice message send failed, falling back to text",
			slog.Int64("chat_id", chatID),
			slog.Any("error", sendErr),
		)
		return false
	}

	return true
}
