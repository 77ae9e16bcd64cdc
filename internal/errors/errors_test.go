package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("address", "must not be empty")
	want := "validation failed on address: must not be empty"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var vErr *ValidationError
	if !errors.As(error(err), &vErr) {
		t.Error("errors.As should match *ValidationError")
	}
}

func TestDataSourceError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewDataSourceError("live-search", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should unwrap to inner error")
	}
	if got := err.Error(); got != "data source live-search failed: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFallbackExhausted_Unwrap(t *testing.T) {
	inner := errors.New("timeout")
	err := &FallbackExhausted{Providers: []string{"gemini", "groq"}, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should unwrap to inner error")
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"no result", ErrNoResult, true},
		{"wrapped no result", fmt.Errorf("semantic: %w", ErrNoResult), true},
		{"timeout", ErrTimeout, true},
		{"data source", NewDataSourceError("semantic-index", errors.New("down")), true},
		{"exhausted", ErrResolutionExhausted, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverable(tt.err); got != tt.want {
				t.Errorf("IsRecoverable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
