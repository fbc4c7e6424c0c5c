package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ErrInvalidAmount reports a negative allowance, cost, or grant amount passed
// to a ledger operation. It indicates a caller bug and is never retryable.
var ErrInvalidAmount = errors.New("amount must not be negative")

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewValidationError reports malformed input from the caller, such as a
// negative credit amount.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: "That request doesn't look right. Please try again.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       ErrInvalidAmount,
	}
}

// NewStorageError wraps a failure to reach or write the backing store. The
// ledger surfaces it without retrying; retries belong to the caller.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("storage unavailable: %s", underlyingMsg),
		UserMessage: "A temporary problem occurred. Please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewGenerationError wraps a failed compliment-generation call.
func NewGenerationError(cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     "compliment generation failed",
		UserMessage: "Sorry, I couldn't come up with a compliment just now.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewSynthesisError wraps a failed text-to-speech call.
func NewSynthesisError(cause error) *AppError {
	return &AppError{
		Code:        "E310",
		Message:     "speech synthesis failed",
		UserMessage: "Sorry, I couldn't generate an audio response.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// IsStorage reports whether err originated from the backing store.
func IsStorage(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Code == "E200"
	}

	return false
}
