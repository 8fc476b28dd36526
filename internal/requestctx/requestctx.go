// Package requestctx carries request-scoped values below the HTTP layer so
// domain and job logs can be correlated with the request that caused them.
package requestctx

import (
	"context"
	"log/slog"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// Logger returns base tagged with the request id carried by ctx, if any.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if id := GetRequestID(ctx); id != "" {
		return base.With("requestId", id)
	}
	return base
}
