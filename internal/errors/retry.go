package errors

import (
	"context"
	"errors"
	"time"
)

const (
	defaultAttempts   = 3
	initialBackoff    = 200 * time.Millisecond
	maxBackoff        = 2 * time.Second
	backoffMultiplier = 2
)

// WithRetry runs fn up to three times, backing off between attempts. Only
// errors marked retryable are retried. The ledger never calls this: storage
// retries belong to the caller, and this helper exists for the external
// generation and synthesis calls.
func WithRetry(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	backoff := initialBackoff

	var err error
	for attempt := 1; attempt <= defaultAttempts; attempt++ {
		err = fn()
		if err == nil || !IsRetryable(err) {
			return err
		}

		if attempt == defaultAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= backoffMultiplier
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	return err
}

// IsRetryable reports whether err is an AppError flagged as retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}

	return false
}
