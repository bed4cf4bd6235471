package logging

import (
	"context"
	"log/slog"
	"strings"
)

// FieldSessionID is the structured logging key for encode or playback run ids.
const FieldSessionID = "session_id"

type sessionKey struct{}

// WithSessionID stores the run id on ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFromContext returns the run id stored by WithSessionID.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if id, ok := SessionIDFromContext(ctx); ok {
		return []slog.Attr{slog.String(FieldSessionID, id)}
	}
	return nil
}

// WithContext returns a logger augmented with fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
