package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/compliment-hotline/compliment-bot/internal/domain"
)

// ErrAccountNotFound is returned when no account row exists for the user.
var ErrAccountNotFound = errors.New("account not found")

// ConsumeResult is the storage-level outcome of a consumption attempt.
// When Applied is false the balances reflect a consistent snapshot taken
// after the attempt, with nothing mutated.
type ConsumeResult struct {
	Applied              bool
	FromFree             bool
	FreeInteractionsUsed int64
	Credits              int64
}

// AccountRepository defines persistence operations for user accounts. The
// repository is the sole writer to the accounts table; every mutating
// operation is atomic with respect to concurrent operations on the same
// account and independent across accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, userID int64) (*domain.UserAccount, error)
	CreateIfAbsent(ctx context.Context, account *domain.UserAccount) error
	Consume(ctx context.Context, userID, freeAllowance, creditCost int64) (*ConsumeResult, error)
	ResetFreeInteractions(ctx context.Context, userID int64) error
	ResetAllFreeInteractions(ctx context.Context) (int64, error)
	GrantCredits(ctx context.Context, userID, amount int64) (int64, error)
}

type accountRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewAccountRepository creates a PostgreSQL-backed account repository.
func NewAccountRepository(db *sql.DB, log *slog.Logger) AccountRepository {
	return &accountRepository{
		db:  db,
		log: log,
	}
}

// FindByID retrieves an account by the user's Telegram identifier.
func (r *accountRepository) FindByID(ctx context.Context, userID int64) (*domain.UserAccount, error) {
	const query = `
		SELECT user_id, free_interactions_used, credits, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, userID)

	var account domain.UserAccount
	if err := row.Scan(
		&account.UserID,
		&account.FreeInteractionsUsed,
		&account.Credits,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}

		if r.log != nil {
			r.log.Error("failed to fetch account", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select account: %w", err)
	}

	return &account, nil
}

// CreateIfAbsent inserts a new account row unless one already exists. Two
// concurrent first-time creations for the same user resolve to a single row.
func (r *accountRepository) CreateIfAbsent(ctx context.Context, account *domain.UserAccount) error {
	const query = `
		INSERT INTO accounts (user_id, free_interactions_used, credits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(
		ctx,
		query,
		account.UserID,
		account.FreeInteractionsUsed,
		account.Credits,
		account.CreatedAt,
		account.UpdatedAt,
	); err != nil {
		if r.log != nil {
			r.log.Error("failed to create account", slog.Int64("user_id", account.UserID), slog.Any("error", err))
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// Consume applies the free-before-credit consumption decision as a single
// transaction. Each conditional UPDATE re-evaluates its predicate under the
// row lock, so two concurrent calls can never both spend the last unit of a
// bucket, and a denial mutates nothing.
func (r *accountRepository) Consume(ctx context.Context, userID, freeAllowance, creditCost int64) (*ConsumeResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin consume transaction: %w", err)
	}

	result, err := r.consumeInTx(ctx, tx, userID, freeAllowance, creditCost)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			if r.log != nil {
				r.log.Error("consume rollback failed", slog.Int64("user_id", userID), slog.Any("error", rbErr))
			}
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit consume transaction: %w", err)
	}

	return result, nil
}

func (r *accountRepository) consumeInTx(ctx context.Context, tx *sql.Tx, userID, freeAllowance, creditCost int64) (*ConsumeResult, error) {
	const consumeFree = `
		UPDATE accounts
		SET free_interactions_used = free_interactions_used + 1, updated_at = NOW()
		WHERE user_id = $1 AND free_interactions_used < $2
		RETURNING free_interactions_used, credits
	`

	var used, credits int64

	err := tx.QueryRowContext(ctx, consumeFree, userID, freeAllowance).Scan(&used, &credits)
	if err == nil {
		return &ConsumeResult{Applied: true, FromFree: true, FreeInteractionsUsed: used, Credits: credits}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume free interaction: %w", err)
	}

	const consumeCredits = `
		UPDATE accounts
		SET credits = credits - $2, updated_at = NOW()
		WHERE user_id = $1 AND credits >= $2
		RETURNING free_interactions_used, credits
	`

	err = tx.QueryRowContext(ctx, consumeCredits, userID, creditCost).Scan(&used, &credits)
	if err == nil {
		return &ConsumeResult{Applied: true, FromFree: false, FreeInteractionsUsed: used, Credits: credits}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume credits: %w", err)
	}

	const snapshot = `
		SELECT free_interactions_used, credits
		FROM accounts
		WHERE user_id = $1
	`

	if err := tx.QueryRowContext(ctx, snapshot, userID).Scan(&used, &credits); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("read account snapshot: %w", err)
	}

	return &ConsumeResult{Applied: false, FreeInteractionsUsed: used, Credits: credits}, nil
}

// ResetFreeInteractions zeroes the free-interaction counter for one account.
func (r *accountRepository) ResetFreeInteractions(ctx context.Context, userID int64) error {
	const query = `
		UPDATE accounts
		SET free_interactions_used = 0, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to reset free interactions", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return fmt.Errorf("reset free interactions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reset free interactions rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// ResetAllFreeInteractions zeroes the free-interaction counter for every
// account, returning how many rows changed. Used by the promotional reset job.
func (r *accountRepository) ResetAllFreeInteractions(ctx context.Context) (int64, error) {
	const query = `
		UPDATE accounts
		SET free_interactions_used = 0, updated_at = NOW()
		WHERE free_interactions_used <> 0
	`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to reset all free interactions", slog.Any("error", err))
		}
		return 0, fmt.Errorf("reset all free interactions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset all free interactions rows affected: %w", err)
	}

	return affected, nil
}

// GrantCredits atomically adds amount to the account's credit balance and
// returns the new balance.
func (r *accountRepository) GrantCredits(ctx context.Context, userID, amount int64) (int64, error) {
	const query = `
		UPDATE accounts
		SET credits = credits + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING credits
	`

	var credits int64
	if err := r.db.QueryRowContext(ctx, query, userID, amount).Scan(&credits); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}

		if r.log != nil {
			r.log.Error("failed to grant credits", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return 0, fmt.Errorf("grant credits: %w", err)
	}

	return credits, nil
}
