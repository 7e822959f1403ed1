package retry

import "context"

// RetryWhile repeats step until it signals a halt or the delay stream is
// exhausted, threading an accumulator across attempts. Unlike Retry there is
// no failure classification and no rescue logic: any error returned by step
// propagates immediately, uncaught, and no clause runs on its behalf.
//
// step receives the current accumulator and returns the next one together
// with a halt flag. The first halt ends the loop and its accumulator becomes
// the result; on stream exhaustion the last returned accumulator is the
// result.
//
// Example:
//
//	n, err := retry.RetryWhile(ctx, 0, func(ctx context.Context, acc int) (int, bool, error) {
//	    if acc < 3 {
//	        return acc + 1, false, nil
//	    }
//	    return acc, true, nil
//	}, retry.With(delays.Constant(0).Take(10)))
func RetryWhile[A any](
	ctx context.Context,
	seed A,
	step func(ctx context.Context, acc A) (A, bool, error),
	opts ...Option,
) (A, error) {
	var zero A

	o, err := newOptions(opts)
	if err != nil {
		return zero, err
	}

	if step == nil {
		return zero, configError(ErrNoOperation)
	}

	acc := seed

	err = run(ctx, o.stream, o.hook, func(ctx context.Context) (bool, error, error) {
		next, halt, err := step(ctx, acc)
		if err != nil {
			return false, nil, err
		}

		acc = next

		return halt, nil, nil
	})
	if err != nil {
		return zero, err
	}

	return acc, nil
}
