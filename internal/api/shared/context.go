package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/domain"
)

// ContextKey namespaces request context values.
type ContextKey string

const (
	// ActorContextKey holds the authenticated *domain.User.
	ActorContextKey ContextKey = "actor"

	// TraceIDKey holds the request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// WithActor returns a copy of ctx carrying the authenticated user.
func WithActor(ctx context.Context, actor *domain.User) context.Context {
	return context.WithValue(ctx, ActorContextKey, actor)
}

// ActorFromContext returns the authenticated user placed in ctx by the auth middleware.
func ActorFromContext(ctx context.Context) (*domain.User, bool) {
	actor, ok := ctx.Value(ActorContextKey).(*domain.User)
	if !ok || actor == nil {
		return nil, false
	}
	return actor, true
}

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, generateTraceID())
}

// WithTraceID stores an existing trace ID, for example one supplied by an upstream proxy.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context, or "" when none is set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate random trace ID",
			slog.Any("error", err),
			slog.Int("bytes_read", n))
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID derives an ID from the clock when crypto/rand is unavailable.
func fallbackTraceID() string {
	b := make([]byte, TraceIDLength)
	now := time.Now()
	binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint64(b[8:], uint64(now.Nanosecond())^uint64(now.Unix()))
	return hex.EncodeToString(b)
}
