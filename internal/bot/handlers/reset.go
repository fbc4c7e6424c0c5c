package handlers

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/compliment-hotline/compliment-bot/internal/ledger"
)

// NewResetHandler returns a handler for the free-credits button and /reset
// command. It refreshes the sender's free-interaction allowance.
func NewResetHandler(ledgerSvc *ledger.Service, freeAllowance int64, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		sender := c.Sender()
		if sender == nil {
			if log != nil {
				log.Warn("reset handler invoked without sender")
			}
			return nil
		}

		ctx := context.Background()

		if err := ledgerSvc.ResetFreeInteractions(ctx, sender.ID); err != nil {
			return err
		}

		if log != nil {
			log.Info("free interactions reset", slog.Int64("user_id", sender.ID))
		}

		message := fmt.Sprintf(
			"🎁 Done! Your free compliments are refreshed.\nYou now have %d free compliments.",
			freeAllowance,
		)

		return c.Send(message)
	}
}
