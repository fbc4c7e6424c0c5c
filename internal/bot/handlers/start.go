package handlers

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/compliment-hotline/compliment-bot/internal/bot/keyboard"
	"github.com/compliment-hotline/compliment-bot/internal/ledger"
)

// NewStartHandler returns a handler for the /start command. It ensures the
// sender has a ledger account and greets them with the main menu.
func NewStartHandler(ledgerSvc *ledger.Service, freeAllowance int64, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		sender := c.Sender()
		if sender == nil {
			if log != nil {
				log.Warn("start handler invoked without sender")
			}
			return nil
		}

		ctx := context.Background()

		account, err := ledgerSvc.GetOrCreate(ctx, sender.ID)
		if err != nil {
			return err
		}

		name := sender.FirstName
		if name == "" {
			name = "there"
		}

		message := fmt.Sprintf(
			"Hey %s! 👋 Welcome to the Compliment Hotline.\n\n"+
				"Pick a category below and I'll write you a one-of-a-kind compliment.\n\n"+
				"Free compliments remaining: %d\nCredits: %d",
			name,
			account.FreeRemaining(freeAllowance),
			account.Credits,
		)

		return c.Send(message, keyboard.MainMenu())
	}
}

// NewMenuPromptHandler returns the fallback handler for unmatched text. It
// re-shows the main menu.
func NewMenuPromptHandler() Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		return c.Send("Please select a compliment category from the menu below.", keyboard.MainMenu())
	}
}
