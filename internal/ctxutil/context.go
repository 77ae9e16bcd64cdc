// Package ctxutil provides type-safe context values for request tracing.
// Private key types prevent collisions between packages.
package ctxutil

import "context"

type contextKey string

const (
	userIDKey    contextKey = "ctxutil.userID"
	requestIDKey contextKey = "ctxutil.requestID"
)

// WithUserID attaches the messaging platform user ID to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the user ID from the context, or "".
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// WithRequestID attaches a per-webhook request ID for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID from the context, or "".
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// Detach returns a context that keeps tracing values but drops the parent's
// deadline and cancellation. Used when event processing must outlive the
// webhook request.
func Detach(ctx context.Context) context.Context {
	detached := context.Background()
	if userID := GetUserID(ctx); userID != "" {
		detached = WithUserID(detached, userID)
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		detached = WithRequestID(detached, requestID)
	}
	return detached
}
