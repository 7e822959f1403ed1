package retry

import (
	"context"
	"time"
)

// Event describes one retryable attempt, reported just before the engine
// sleeps for the next stream element. Attempts that succeed, fail fatally,
// or exhaust the stream produce no event.
type Event struct {
	// Attempt is the zero-based index of the attempt that just came back
	// retryable.
	Attempt uint

	// Delay is the upcoming wait before the next attempt.
	Delay time.Duration

	// Err is the retryable error, or nil when a sentinel value (or a falsy
	// poll in Wait) triggered the retry.
	Err error
}

// Hook observes retries. The engine itself emits no logs, metrics, or
// traces; a hook is where callers attach instrumentation (see the observe
// package for ready-made ones). Hooks run synchronously on the retrying
// goroutine and should be cheap.
type Hook func(ctx context.Context, e Event)
