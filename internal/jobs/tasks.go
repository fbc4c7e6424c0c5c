package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskTypePromoReset = "ledger:promo_reset"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// PromoResetPayload carries metadata for a promotional free-interaction reset.
type PromoResetPayload struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewPromoResetTask builds a task that refreshes the free allowance for every account.
func NewPromoResetTask(reason string) (*asynq.Task, error) {
	payload, err := json.Marshal(PromoResetPayload{
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypePromoReset, payload, asynq.Queue(QueueLow)), nil
}
