// Package ledger is the authoritative source of truth for each user's
// remaining free allowance and credit balance. All mutating operations on the
// same account are mutually exclusive; operations on different accounts
// proceed independently.
package ledger

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/compliment-hotline/compliment-bot/internal/domain"
	errors "github.com/compliment-hotline/compliment-bot/internal/errors"
	"github.com/compliment-hotline/compliment-bot/internal/repository"
	"github.com/compliment-hotline/compliment-bot/pkg/metrics"
)

// Bucket identifies which balance a consumption was charged against.
type Bucket string

const (
	BucketFree   Bucket = "free"
	BucketCredit Bucket = "credit"
)

// Consumption is the authorization decision returned by TryConsume. When
// Authorized is false the balances are a snapshot and nothing was mutated.
type Consumption struct {
	Authorized    bool
	Bucket        Bucket
	FreeRemaining int64
	Credits       int64
}

// Service exposes the usage-ledger operations. It is constructed once at
// process start and passed to every consumer; it holds no per-request state.
type Service struct {
	repo repository.AccountRepository
	log  *slog.Logger
}

// NewService constructs a ledger Service over the given repository.
func NewService(repo repository.AccountRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{repo: repo, log: log}
}

// GetOrCreate returns the account for userID, creating it with zeroed
// counters when absent. Concurrent first-time lookups converge on a single
// persisted record.
func (s *Service) GetOrCreate(ctx context.Context, userID int64) (*domain.UserAccount, error) {
	account, err := s.repo.FindByID(ctx, userID)
	if err == nil {
		return account, nil
	}

	if !stdErrors.Is(err, repository.ErrAccountNotFound) {
		return nil, s.storageError("get_or_create.find", userID, err)
	}

	now := time.Now().UTC()
	fresh := &domain.UserAccount{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateIfAbsent(ctx, fresh); err != nil {
		return nil, s.storageError("get_or_create.create", userID, err)
	}

	// Re-read: a concurrent creator may have won the insert.
	account, err = s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.storageError("get_or_create.reread", userID, err)
	}

	return account, nil
}

// TryConsume atomically decides and applies exactly one outcome: consume a
// free interaction if any remain under freeAllowance, otherwise spend
// creditCost credits if the balance suffices, otherwise deny without mutation.
func (s *Service) TryConsume(ctx context.Context, userID, freeAllowance, creditCost int64) (*Consumption, error) {
	if freeAllowance < 0 {
		return nil, errors.NewValidationError(fmt.Sprintf("free allowance must not be negative, got %d", freeAllowance))
	}
	if creditCost < 0 {
		return nil, errors.NewValidationError(fmt.Sprintf("credit cost must not be negative, got %d", creditCost))
	}

	result, err := s.repo.Consume(ctx, userID, freeAllowance, creditCost)
	if stdErrors.Is(err, repository.ErrAccountNotFound) {
		if _, createErr := s.GetOrCreate(ctx, userID); createErr != nil {
			return nil, createErr
		}

		result, err = s.repo.Consume(ctx, userID, freeAllowance, creditCost)
	}
	if err != nil {
		return nil, s.storageError("try_consume", userID, err)
	}

	consumption := &Consumption{
		Authorized:    result.Applied,
		FreeRemaining: remaining(freeAllowance, result.FreeInteractionsUsed),
		Credits:       result.Credits,
	}

	if result.Applied {
		if result.FromFree {
			consumption.Bucket = BucketFree
		} else {
			consumption.Bucket = BucketCredit
		}
	}

	metrics.RecordConsumption(string(consumption.Bucket), result.Applied)

	return consumption, nil
}

// PeekBalance returns a consistent snapshot of the remaining free allowance
// and credit balance, creating the account lazily when unknown.
func (s *Service) PeekBalance(ctx context.Context, userID, freeAllowance int64) (freeRemaining, credits int64, err error) {
	if freeAllowance < 0 {
		return 0, 0, errors.NewValidationError(fmt.Sprintf("free allowance must not be negative, got %d", freeAllowance))
	}

	account, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	return account.FreeRemaining(freeAllowance), account.Credits, nil
}

// ResetFreeInteractions unconditionally zeroes the free-interaction counter.
func (s *Service) ResetFreeInteractions(ctx context.Context, userID int64) error {
	err := s.repo.ResetFreeInteractions(ctx, userID)
	if stdErrors.Is(err, repository.ErrAccountNotFound) {
		if _, createErr := s.GetOrCreate(ctx, userID); createErr != nil {
			return createErr
		}

		err = s.repo.ResetFreeInteractions(ctx, userID)
	}
	if err != nil {
		return s.storageError("reset_free_interactions", userID, err)
	}

	metrics.RecordReset("user")

	return nil
}

// ResetAllFreeInteractions zeroes the free-interaction counter on every
// account. Used by the promotional reset job; returns how many accounts changed.
func (s *Service) ResetAllFreeInteractions(ctx context.Context) (int64, error) {
	affected, err := s.repo.ResetAllFreeInteractions(ctx)
	if err != nil {
		return 0, s.storageError("reset_all_free_interactions", 0, err)
	}

	metrics.RecordReset("promo")

	s.log.Info("promotional free-interaction reset applied", slog.Int64("accounts", affected))

	return affected, nil
}

// GrantCredits atomically adds amount to the account's credit balance and
// returns the new balance. Amount must be positive. Extension point for
// payment integration; nothing in the chat surface grants credits yet.
func (s *Service) GrantCredits(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, errors.NewValidationError(fmt.Sprintf("grant amount must be positive, got %d", amount))
	}

	credits, err := s.repo.GrantCredits(ctx, userID, amount)
	if stdErrors.Is(err, repository.ErrAccountNotFound) {
		if _, createErr := s.GetOrCreate(ctx, userID); createErr != nil {
			return 0, createErr
		}

		credits, err = s.repo.GrantCredits(ctx, userID, amount)
	}
	if err != nil {
		return 0, s.storageError("grant_credits", userID, err)
	}

	return credits, nil
}

func (s *Service) storageError(operation string, userID int64, err error) error {
	if s.log != nil {
		s.log.Error("ledger operation failed",
			slog.String("operation", operation),
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
	}

	return errors.NewStorageError(err)
}

func remaining(allowance, used int64) int64 {
	if used >= allowance {
		return 0
	}

	return allowance - used
}
