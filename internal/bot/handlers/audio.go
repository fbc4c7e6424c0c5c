package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/compliment-hotline/compliment-bot/internal/session"
)

// NewAudioToggleHandler returns a handler for the audio button and /audio
// command. The flag is kept per chat, not per account.
func NewAudioToggleHandler(prefs session.Preferences, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		ctx := context.Background()
		chatID := c.Chat().ID

		enabled, err := prefs.ToggleAudio(ctx, chatID)
		if err != nil {
			return err
		}

		if log != nil {
			log.Info("audio preference toggled", slog.Int64("chat_id", chatID), slog.Bool("enabled", enabled))
		}

		if enabled {
			return c.Send("🔊 Audio is on. Your compliments will arrive as voice messages.")
		}

		return c.Send("🔇 Audio is off. Your compliments will arrive as text.")
	}
}
