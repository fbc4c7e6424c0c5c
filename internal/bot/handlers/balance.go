package handlers

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/compliment-hotline/compliment-bot/internal/ledger"
)

// NewBalanceHandler returns a handler for the balance button and /balance
// command. It reads a consistent snapshot without consuming anything.
func NewBalanceHandler(ledgerSvc *ledger.Service, freeAllowance int64, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		sender := c.Sender()
		if sender == nil {
			if log != nil {
				log.Warn("balance handler invoked without sender")
			}
			return nil
		}

		ctx := context.Background()

		freeRemaining, credits, err := ledgerSvc.PeekBalance(ctx, sender.ID, freeAllowance)
		if err != nil {
			return err
		}

		message := fmt.Sprintf(
			"💳 Your balance\n\nFree compliments remaining: %d of %d\nCredits: %d",
			freeRemaining,
			freeAllowance,
			credits,
		)

		return c.Send(message)
	}
}
