package observability

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

type correlationKey struct{}

// WithCorrelation returns ctx carrying the request correlation id. Blank ids leave ctx untouched.
func WithCorrelation(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the correlation id carried by ctx, if any.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// RequestLogger returns logger tagged with the correlation id of ctx, so workspace and service
// logs can be joined to the request that caused them.
func RequestLogger(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	id := CorrelationID(ctx)
	if id == "" {
		return logger
	}
	return logger.With().Str("correlation_id", id).Logger()
}
