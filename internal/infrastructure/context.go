package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
)

// GenerateTraceID creates a new unique trace ID using UUID v4
func GenerateTraceID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// EnsureTraceID ensures the context has a trace ID, generating one if needed
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return WithTraceID(ctx, GenerateTraceID())
	}
	return ctx
}

// WithLogger stores logger in the context for LoggerFromContext.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return ctxlog.With(ctx, logger)
}

// LoggerFromContext returns the logger carried by ctx.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return ctxlog.From(ctx)
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}
