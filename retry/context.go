package retry

import (
	"context"

	"github.com/google/uuid"
)

// ctxKey is the type for context keys used internally to avoid collisions.
type ctxKey string

const (
	attemptKey    ctxKey = "attempt"
	invocationKey ctxKey = "invocation"
)

// withAttempt adds the attempt number to the context. This allows the
// operation being retried to know which attempt it is on.
func withAttempt(ctx context.Context, attempt uint) context.Context {
	return context.WithValue(ctx, attemptKey, attempt)
}

// Attempt retrieves the current attempt number (zero-based) from the
// context. Returns 0 outside a retry loop.
//
// Example:
//
//	err := retry.Exec(ctx, func(ctx context.Context) error {
//	    slog.DebugContext(ctx, "calling API", "attempt", retry.Attempt(ctx))
//	    return makeAPICall(ctx)
//	}, retry.With(stream))
func Attempt(ctx context.Context) uint {
	i := ctx.Value(attemptKey)
	if i == nil {
		return 0
	}

	attemptNum, ok := i.(uint)
	if !ok {
		return 0
	}

	return attemptNum
}

// withInvocation tags the context with a fresh invocation ID, unless one is
// already present (a retry running inside another retry keeps the outer ID).
func withInvocation(ctx context.Context) context.Context {
	if _, ok := ctx.Value(invocationKey).(uuid.UUID); ok {
		return ctx
	}

	return context.WithValue(ctx, invocationKey, uuid.New())
}

// Invocation retrieves the ID identifying the current retry invocation,
// letting instrumentation correlate the attempts of a single loop. Returns
// uuid.Nil outside a retry loop.
func Invocation(ctx context.Context) uuid.UUID {
	id, ok := ctx.Value(invocationKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}

	return id
}
