package retry

import (
	"context"

	"github.com/amp-labs/amp-retry/delays"
)

// WaitClauses bundles the poll operation and its continuations for Wait.
type WaitClauses[T any] struct {
	// Poll checks whether a value is ready. ok=false means "not yet" and
	// consumes the next stream element; ok=true halts the loop immediately.
	Poll func(ctx context.Context) (T, bool)

	// After maps the ready value to the returned result. Defaults to
	// identity.
	After func(T) T

	// Else handles the final outcome when the stream runs out while the
	// value is still not ready. It receives the last not-ready value.
	// Defaults to returning it alongside ErrWaitExpired.
	Else func(last T) (T, error)
}

// Wait polls until a value is ready, spacing polls with the given delay
// stream. The first poll happens immediately. A ready value halts the loop
// at once — remaining stream elements are never consumed — and is mapped by
// After. If the stream is exhausted while still not ready, Else decides the
// result; by default the last value is returned with ErrWaitExpired.
//
// Example:
//
//	job, err := retry.Wait(ctx, delays.Constant(time.Second).Take(30),
//	    retry.WaitClauses[*Job]{
//	        Poll: func(ctx context.Context) (*Job, bool) {
//	            j := lookup(ctx, id)
//	            return j, j != nil && j.Done()
//	        },
//	    })
func Wait[T any](ctx context.Context, stream delays.Stream, c WaitClauses[T]) (T, error) {
	var zero T

	if stream == nil {
		return zero, configError(ErrNoStream)
	}

	if c.Poll == nil {
		return zero, configError(ErrNoOperation)
	}

	var (
		last  T
		ready bool
	)

	err := run(ctx, stream, nil, func(ctx context.Context) (bool, error, error) {
		last, ready = c.Poll(ctx)

		return ready, nil, nil
	})
	if err != nil {
		return zero, err
	}

	if ready {
		if c.After != nil {
			return c.After(last), nil
		}

		return last, nil
	}

	if c.Else != nil {
		return c.Else(last)
	}

	return last, ErrWaitExpired
}
