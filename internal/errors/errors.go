// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNoResult indicates a resolution stage produced no usable result.
	// The pipeline folds this into "try the next stage".
	ErrNoResult = errors.New("no result")

	// ErrCacheMiss indicates the requested key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrResolutionExhausted indicates every resolution stage failed,
	// including the generic fallback. This is the only pipeline error
	// that surfaces to the caller.
	ErrResolutionExhausted = errors.New("resolution exhausted")

	// ErrRateLimitExceeded indicates a per-user rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
)

// ValidationError represents malformed or incomplete onboarding input.
// It is recovered locally by re-prompting the user, never surfaced as a failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// DataSourceError represents a failure of the semantic index or the live
// place search. It triggers cascade continuation and is never surfaced
// directly to the user.
type DataSourceError struct {
	Source string // "semantic-index", "live-search", "cache"
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s failed: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// NewDataSourceError creates a new data source error.
func NewDataSourceError(source string, err error) *DataSourceError {
	return &DataSourceError{Source: source, Err: err}
}

// FallbackExhausted represents the failure of every configured generic-AI
// provider. The caller turns it into a user-facing apology with
// alternative-contact guidance.
type FallbackExhausted struct {
	Providers []string
	Err       error
}

func (e *FallbackExhausted) Error() string {
	return fmt.Sprintf("all %d fallback providers failed: %v", len(e.Providers), e.Err)
}

func (e *FallbackExhausted) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether the error is stage-local and the cascade
// should continue with the next stage.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrNoResult) || errors.Is(err, ErrTimeout) {
		return true
	}
	var dsErr *DataSourceError
	return errors.As(err, &dsErr)
}
