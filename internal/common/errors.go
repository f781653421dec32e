// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInUse          = errors.New("still referenced")

	// ErrDataSource marks a failed read from the expense data source.
	ErrDataSource = errors.New("data source error")

	// ErrPrecondition marks a call made with arguments or state that can never succeed.
	ErrPrecondition = errors.New("precondition failed")
	// ErrBusy is returned when an advisory task is already running for a session.
	ErrBusy = fmt.Errorf("%w: advisory task already running", ErrPrecondition)
	// ErrSessionClosed is returned when submitting to a session that has been torn down.
	ErrSessionClosed = fmt.Errorf("%w: session closed", ErrPrecondition)

	// Authentication errors.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded)
}
