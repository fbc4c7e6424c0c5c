package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/compliment-hotline/compliment-bot/internal/jobs"
	"github.com/compliment-hotline/compliment-bot/internal/ledger"
)

// PromoResetHandler refreshes the free-interaction allowance for every account.
type PromoResetHandler struct {
	ledger *ledger.Service
	log    *slog.Logger
}

// NewPromoResetHandler builds the handler over the ledger service.
func NewPromoResetHandler(ledgerSvc *ledger.Service, log *slog.Logger) *PromoResetHandler {
	return &PromoResetHandler{ledger: ledgerSvc, log: log}
}

func (h *PromoResetHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.PromoResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "promo reset: failed to decode payload", slog.Any("task_type", t.Type()), slog.String("error", err.Error()))
		}
		return err
	}

	affected, err := h.ledger.ResetAllFreeInteractions(ctx)
	if err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "promo reset: failed", slog.String("reason", payload.Reason), slog.Any("error", err))
		}
		return err
	}

	if h.log != nil {
		h.log.InfoContext(ctx, "promo reset: completed",
			slog.String("reason", payload.Reason),
			slog.Time("requested_at", payload.RequestedAt),
			slog.Int64("accounts", affected),
		)
	}

	return nil
}
