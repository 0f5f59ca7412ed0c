// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Dataset errors.
	ErrNotFound = errors.New("not found")

	// Oracle errors.
	ErrOracleTransport = errors.New("oracle transport failed")
	ErrOracleAuth      = errors.New("oracle authentication failed")
	ErrRateLimit       = errors.New("rate limit exceeded")

	// Carrier errors.
	ErrCarrierUnavailable = errors.New("carrier API unavailable")
	ErrNoQuotes           = errors.New("no freight quotes available")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// DataLoadError indicates the nomenclature dataset could not be loaded.
// It is the only error class allowed to escape the classification core:
// without a dataset the system cannot function at all.
type DataLoadError struct {
	Err    error
	Reason string
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nomenclature data load failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("nomenclature data load failed: %s", e.Reason)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// NewDataLoadError creates a DataLoadError with a human-readable reason.
func NewDataLoadError(reason string, err error) error {
	return &DataLoadError{Reason: reason, Err: err}
}

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
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrOracleTransport) ||
		errors.Is(err, ErrCarrierUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
