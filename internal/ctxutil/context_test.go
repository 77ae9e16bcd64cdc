package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestUserID(t *testing.T) {
	ctx := context.Background()
	if GetUserID(ctx) != "" {
		t.Error("empty context should have no user ID")
	}

	ctx = WithUserID(ctx, "u1")
	if GetUserID(ctx) != "u1" {
		t.Errorf("GetUserID() = %q, want u1", GetUserID(ctx))
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if GetRequestID(ctx) != "req-1" {
		t.Errorf("GetRequestID() = %q, want req-1", GetRequestID(ctx))
	}
}

func TestDetach(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	parent = WithUserID(WithRequestID(parent, "req-1"), "u1")

	time.Sleep(time.Millisecond)
	detached := Detach(parent)

	if detached.Err() != nil {
		t.Error("detached context should not inherit cancellation")
	}
	if GetUserID(detached) != "u1" || GetRequestID(detached) != "req-1" {
		t.Error("detached context should keep tracing values")
	}
}
