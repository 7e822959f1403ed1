package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/amp-retry/delays"
)

func TestRetry_SuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	callCount := 0
	got, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++

			return "ok", nil
		},
	}, With(delays.Constant(time.Hour)))

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, callCount, "success must halt before any stream element is consumed")
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	const failures = 3

	callCount := 0
	start := time.Now()

	got, err := Retry(t.Context(), Clauses[int]{
		Do: func(ctx context.Context) (int, error) {
			callCount++
			if callCount <= failures {
				return 0, errors.New("transient") //nolint:err113 // Test error
			}

			return 42, nil
		},
	}, With(delays.Constant(10*time.Millisecond)))

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, failures+1, callCount)
	assert.GreaterOrEqual(t, time.Since(start), time.Duration(failures)*10*time.Millisecond,
		"each retry must wait for its stream element")
}

func TestRetry_FirstAttemptIsImmediate(t *testing.T) {
	t.Parallel()

	start := time.Now()

	_, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			return "ok", nil
		},
	}, With(delays.Constant(time.Hour)))

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "no sleep before the first attempt")
}

func TestRetry_ExhaustionInvokesCountAndDefaultElse(t *testing.T) {
	t.Parallel()

	const streamLen = 4

	callCount := 0
	testErr := errors.New("still failing") //nolint:err113 // Test error

	got, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++

			return "", testErr
		},
	}, With(delays.Constant(0).Take(streamLen)))

	require.Error(t, err)
	assert.Equal(t, testErr, err, "default else re-raises the last caught error unchanged")
	assert.Empty(t, got)
	assert.Equal(t, streamLen+1, callCount, "one immediate attempt plus one per stream element")
}

func TestRetry_SentinelValuesRetryThenExhaust(t *testing.T) {
	t.Parallel()

	const streamLen = 2

	callCount := 0

	got, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++

			return "pending", nil
		},
		RetryOn: []func(string) bool{Equals("pending")},
	}, With(delays.Constant(0).Take(streamLen)))

	require.NoError(t, err, "default else passes a sentinel value through without an error")
	assert.Equal(t, "pending", got)
	assert.Equal(t, streamLen+1, callCount)
}

func TestRetry_SentinelThenSuccess(t *testing.T) {
	t.Parallel()

	callCount := 0

	got, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++
			if callCount < 3 {
				return "pending", nil
			}

			return "done", nil
		},
		RetryOn: []func(string) bool{Equals("pending", "enqueued")},
	}, With(delays.Constant(0)))

	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, 3, callCount)
}

func TestRetry_NonRetryableErrorPropagatesImmediately(t *testing.T) {
	t.Parallel()

	fatal := errors.New("bad request") //nolint:err113 // Test error
	transient := errors.New("timeout") //nolint:err113 // Test error

	callCount := 0
	elseCalled := false
	start := time.Now()

	_, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++

			return "", fatal
		},
		Else: func(last string, err error) (string, error) {
			elseCalled = true

			return last, err
		},
	},
		With(delays.Constant(time.Hour)),
		WithRescue(func(err error) bool { return errors.Is(err, transient) }),
	)

	require.Error(t, err)
	assert.Equal(t, fatal, err, "fatal errors propagate untouched")
	assert.Equal(t, 1, callCount)
	assert.False(t, elseCalled, "fatal errors bypass the clause protocol")
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRetry_RescuePredicatesFirstMatchWins(t *testing.T) {
	t.Parallel()

	transient := errors.New("timeout") //nolint:err113 // Test error

	callCount := 0

	got, err := Retry(t.Context(), Clauses[int]{
		Do: func(ctx context.Context) (int, error) {
			callCount++
			if callCount < 3 {
				return 0, transient
			}

			return 7, nil
		},
	},
		With(delays.Constant(0)),
		WithRescue(
			func(err error) bool { return false },
			func(err error) bool { return errors.Is(err, transient) },
		),
	)

	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 3, callCount)
}

func TestRetry_AbortStopsDefaultClassifier(t *testing.T) {
	t.Parallel()

	testErr := errors.New("validation failed") //nolint:err113 // Test error

	callCount := 0

	_, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++

			return "", Abort(testErr)
		},
	}, With(delays.Constant(0)))

	require.Error(t, err)
	assert.Equal(t, testErr, err, "abort propagates the original error, unwrapped")
	assert.Equal(t, 1, callCount, "permanent errors are never retried")
}

func TestRetry_AfterMapsSuccessValue(t *testing.T) {
	t.Parallel()

	got, err := Retry(t.Context(), Clauses[int]{
		Do: func(ctx context.Context) (int, error) {
			return 21, nil
		},
		After: func(v int) int { return v * 2 },
	}, With(delays.Constant(0).Take(1)))

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRetry_CustomElse(t *testing.T) {
	t.Parallel()

	fallbackErr := errors.New("gave up") //nolint:err113 // Test error

	_, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			return "", errors.New("transient") //nolint:err113 // Test error
		},
		Else: func(last string, err error) (string, error) {
			return "fallback", fallbackErr
		},
	}, With(delays.Constant(0).Take(2)))

	require.ErrorIs(t, err, fallbackErr)
}

func TestRetry_EmptyStreamMeansSingleAttempt(t *testing.T) {
	t.Parallel()

	callCount := 0

	_, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++

			return "", errors.New("transient") //nolint:err113 // Test error
		},
	}, With(delays.Of()))

	require.Error(t, err)
	assert.Equal(t, 1, callCount, "an empty stream still allows the immediate first attempt")
}

func TestRetry_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	callCount := 0

	_, err := Retry(ctx, Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++

			return "", errors.New("transient") //nolint:err113 // Test error
		},
	}, With(delays.Constant(time.Hour)))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, callCount)
}

func TestRetry_ContextCancelledDuringSleep(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()

	callCount := 0
	start := time.Now()

	_, err := Retry(ctx, Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++

			return "", errors.New("transient") //nolint:err113 // Test error
		},
	}, With(delays.Constant(time.Hour)))

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, callCount)
	assert.Less(t, time.Since(start), time.Second, "cancellation must interrupt the sleep")
}

func TestRetry_ConfigErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing stream", func(t *testing.T) {
		t.Parallel()

		callCount := 0

		_, err := Retry(t.Context(), Clauses[string]{
			Do: func(ctx context.Context) (string, error) {
				callCount++

				return "ok", nil
			},
		})

		require.ErrorIs(t, err, ErrNoStream)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, 0, callCount, "configuration errors fail before any attempt")
	})

	t.Run("missing operation", func(t *testing.T) {
		t.Parallel()

		_, err := Retry(t.Context(), Clauses[string]{}, With(delays.Constant(0)))
		require.ErrorIs(t, err, ErrNoOperation)
	})

	t.Run("nil option", func(t *testing.T) {
		t.Parallel()

		_, err := Retry(t.Context(), Clauses[string]{
			Do: func(ctx context.Context) (string, error) { return "ok", nil },
		}, nil)
		require.ErrorIs(t, err, ErrNilOption)
	})
}

func TestExec(t *testing.T) {
	t.Parallel()

	callCount := 0
	err := Exec(t.Context(), func(ctx context.Context) error {
		callCount++
		if callCount < 2 {
			return errors.New("transient") //nolint:err113 // Test error
		}

		return nil
	}, With(delays.Constant(0)))

	require.NoError(t, err)
	assert.Equal(t, 2, callCount)
}

func TestExec_NilOperation(t *testing.T) {
	t.Parallel()

	err := Exec(t.Context(), nil, With(delays.Constant(0)))
	require.ErrorIs(t, err, ErrNoOperation)
}

func TestRetry_HookObservesEachRetry(t *testing.T) {
	t.Parallel()

	transient := errors.New("transient") //nolint:err113 // Test error

	var events []Event

	callCount := 0

	_, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++
			if callCount < 4 {
				return "", transient
			}

			return "ok", nil
		},
	},
		With(delays.Of(time.Millisecond, 2*time.Millisecond, 3*time.Millisecond)),
		WithHook(func(ctx context.Context, e Event) {
			events = append(events, e)
		}),
	)

	require.NoError(t, err)
	require.Len(t, events, 3, "one event per retryable attempt, none for the success")

	for i, e := range events {
		assert.Equal(t, uint(i), e.Attempt)                             //nolint:gosec // G115: small test index
		assert.Equal(t, time.Duration(i+1)*time.Millisecond, e.Delay)
		assert.Equal(t, transient, e.Err)
	}
}

func TestRetry_HookSentinelEventHasNilError(t *testing.T) {
	t.Parallel()

	var events []Event

	callCount := 0

	_, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			callCount++
			if callCount == 1 {
				return "pending", nil
			}

			return "done", nil
		},
		RetryOn: []func(string) bool{Equals("pending")},
	},
		With(delays.Constant(0)),
		WithHook(func(ctx context.Context, e Event) {
			events = append(events, e)
		}),
	)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NoError(t, events[0].Err, "sentinel-triggered retries carry no error")
}

func TestAttempt_TrackedInContext(t *testing.T) {
	t.Parallel()

	var seen []uint

	_, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			seen = append(seen, Attempt(ctx))
			if len(seen) < 3 {
				return "", errors.New("transient") //nolint:err113 // Test error
			}

			return "ok", nil
		},
	}, With(delays.Constant(0)))

	require.NoError(t, err)
	assert.Equal(t, []uint{0, 1, 2}, seen)
}

func TestAttempt_ZeroOutsideLoop(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint(0), Attempt(t.Context()))
}

func TestInvocation_StableAcrossAttempts(t *testing.T) {
	t.Parallel()

	ids := make(map[string]bool)

	_, err := Retry(t.Context(), Clauses[string]{
		Do: func(ctx context.Context) (string, error) {
			id := Invocation(ctx)
			assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", id.String())

			ids[id.String()] = true
			if len(ids) < 1 || Attempt(ctx) < 2 {
				return "", errors.New("transient") //nolint:err113 // Test error
			}

			return "ok", nil
		},
	}, With(delays.Constant(0)))

	require.NoError(t, err)
	assert.Len(t, ids, 1, "all attempts of one invocation share an ID")
}
