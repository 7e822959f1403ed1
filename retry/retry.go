// Package retry drives repeated attempts of an operation that may fail
// transiently, waiting between attempts according to a delay stream built
// with the delays package.
//
// The engine classifies every attempt as a success, a retryable failure, or
// a fatal failure. Retryable failures consume the next stream element and
// try again; fatal failures propagate immediately, untouched. When the
// stream runs out, the last retryable outcome becomes final.
//
// Basic usage:
//
//	user, err := retry.Retry(ctx, retry.Clauses[User]{
//	    Do: func(ctx context.Context) (User, error) {
//	        return fetchUser(ctx, id)
//	    },
//	}, retry.With(delays.Exponential(100*time.Millisecond, 2).Take(5)))
//
// Three variants cover the common loop shapes: Retry classifies errors and
// sentinel values, RetryWhile threads an accumulator until an explicit halt,
// and Wait polls until a value is ready.
package retry

import (
	"context"
	"iter"
	"time"

	"github.com/amp-labs/amp-retry/delays"
)

// Clauses bundles the operation and its continuations for Retry. Only Do is
// required; the remaining fields refine classification and final dispatch.
type Clauses[T any] struct {
	// Do is the operation to attempt. It runs once per stream element plus
	// one immediate initial attempt.
	Do func(ctx context.Context) (T, error)

	// RetryOn marks returned values as retryable sentinels. Predicates are
	// tried in order and the first match wins; with no predicates, returned
	// values never trigger a retry (only errors do).
	RetryOn []func(T) bool

	// After maps the final success value to the returned result.
	// Defaults to identity.
	After func(T) T

	// Else handles the final outcome when the stream is exhausted while the
	// operation is still failing. It receives the last retryable value and
	// the last retryable error (exactly one of which is meaningful).
	// Defaults to returning both unchanged, which re-surfaces the last
	// caught error and passes sentinel values through as-is.
	Else func(last T, err error) (T, error)
}

func (c Clauses[T]) retryValue(v T) bool {
	for _, pred := range c.RetryOn {
		if pred != nil && pred(v) {
			return true
		}
	}

	return false
}

// Equals builds a RetryOn predicate matching any of the given sentinel
// values exactly.
//
// Example:
//
//	retry.Clauses[string]{
//	    Do:      poll,
//	    RetryOn: []func(string) bool{retry.Equals("pending", "enqueued")},
//	}
func Equals[T comparable](sentinels ...T) func(T) bool {
	return func(v T) bool {
		for _, s := range sentinels {
			if v == s {
				return true
			}
		}

		return false
	}
}

// Retry executes c.Do until it succeeds, a fatal error occurs, or the
// configured delay stream is exhausted. The first attempt happens
// immediately; each subsequent attempt waits for the next stream element.
//
// Classification of each attempt:
//   - error matching the configured rescue predicates (or, with none
//     configured, any error not wrapped by Abort): retryable, loop continues
//   - any other error: fatal — it propagates at once and neither After nor
//     Else runs
//   - returned value matching a RetryOn predicate: retryable, loop continues
//   - anything else: success — the loop halts immediately, remaining stream
//     elements are never consumed, and After maps the value
//
// On exhaustion the Else clause decides the final result; by default it
// re-raises the last caught error, or returns the last sentinel value
// unchanged.
func Retry[T any](ctx context.Context, c Clauses[T], opts ...Option) (T, error) {
	var zero T

	o, err := newOptions(opts)
	if err != nil {
		return zero, err
	}

	if c.Do == nil {
		return zero, configError(ErrNoOperation)
	}

	var (
		last    T
		lastErr error
		halted  bool
	)

	err = run(ctx, o.stream, o.hook, func(ctx context.Context) (bool, error, error) {
		v, err := c.Do(ctx)

		switch {
		case err != nil && o.retryable(err):
			last, lastErr = zero, err

			return false, err, nil
		case err != nil:
			// Fatal: propagate untouched, skipping After/Else entirely.
			return false, nil, unwrapAbort(err)
		case c.retryValue(v):
			last, lastErr = v, nil

			return false, nil, nil
		default:
			last, lastErr = v, nil
			halted = true

			return true, nil, nil
		}
	})
	if err != nil {
		return zero, err
	}

	if halted {
		if c.After != nil {
			return c.After(last), nil
		}

		return last, nil
	}

	if c.Else != nil {
		return c.Else(last, lastErr)
	}

	return last, lastErr
}

// Exec is a convenience wrapper around Retry for operations that return only
// an error.
func Exec(ctx context.Context, do func(ctx context.Context) error, opts ...Option) error {
	if do == nil {
		return configError(ErrNoOperation)
	}

	_, err := Retry(ctx, Clauses[struct{}]{
		Do: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, do(ctx)
		},
	}, opts...)

	return err
}

// run is the shared loop driver: it invokes attempt once immediately, then
// once per stream element after sleeping for it. attempt reports whether the
// loop should stop (success/halt), the retryable error for hook reporting,
// and a fatal error that aborts the loop.
//
// run returns nil both on halt and on stream exhaustion; callers distinguish
// the two through state recorded inside their attempt closure.
func run(
	ctx context.Context,
	stream delays.Stream,
	hook Hook,
	attempt func(ctx context.Context) (stop bool, retryErr error, fatal error),
) error {
	ctx = withInvocation(ctx)

	next, cancel := iter.Pull(stream.Seq())
	defer cancel()

	for n := uint(0); ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		actx := withAttempt(ctx, n)

		stop, retryErr, fatal := attempt(actx)
		if fatal != nil {
			return fatal
		}

		if stop {
			return nil
		}

		d, ok := next()
		if !ok {
			return nil
		}

		if hook != nil {
			hook(actx, Event{Attempt: n, Delay: d, Err: retryErr})
		}

		if err := sleep(ctx, d); err != nil {
			return err
		}
	}
}

// sleep blocks for d, waking early if the context is canceled. A zero or
// negative d is a no-op apart from the cancellation check.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
