package domain

import "time"

// UserAccount is the authoritative usage record for a single Telegram user.
// Exactly one record exists per TelegramID; it is created lazily on first
// reference and never deleted.
type UserAccount struct {
	UserID               int64
	FreeInteractionsUsed int64
	Credits              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// FreeRemaining returns how many free interactions are left under the given
// allowance, clamped at zero.
func (a *UserAccount) FreeRemaining(allowance int64) int64 {
	if a == nil {
		return 0
	}

	remaining := allowance - a.FreeInteractionsUsed
	if remaining < 0 {
		return 0
	}

	return remaining
}
