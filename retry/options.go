package retry

import (
	"errors"

	"github.com/amp-labs/amp-retry/delays"
)

// Option configures a retry invocation. Options follow the functional
// options pattern; every invocation requires at least With.
type Option func(*options)

// options holds the internal configuration for a retry invocation.
type options struct {
	stream delays.Stream       // delay stream driving attempt spacing (required)
	rescue []func(error) bool  // retryable-error predicates
	hook   Hook                // per-retry observer
}

// With sets the delay stream that spaces out attempts. It is the one
// required option: Retry, RetryWhile and Exec return a ConfigError before
// any attempt executes when it is missing.
//
// Example:
//
//	retry.With(delays.Constant(250 * time.Millisecond).Take(4))
func With(stream delays.Stream) Option {
	return func(o *options) {
		o.stream = stream
	}
}

// WithRescue narrows which errors are treated as retryable. Predicates are
// tried in order and the first match wins; an error matching none of them
// propagates immediately, uncaught.
//
// Without this option every error is retryable unless wrapped by Abort.
//
// Example:
//
//	retry.WithRescue(func(err error) bool {
//	    return errors.Is(err, io.ErrUnexpectedEOF)
//	})
func WithRescue(preds ...func(error) bool) Option {
	return func(o *options) {
		o.rescue = append(o.rescue, preds...)
	}
}

// WithHook registers an observer invoked after each retryable attempt,
// before the engine sleeps. The core emits no logs or metrics of its own;
// hooks are the instrumentation point (see the observe package).
func WithHook(h Hook) Option {
	return func(o *options) {
		o.hook = h
	}
}

// newOptions applies and validates the option set. Configuration problems
// surface here, before the first attempt, as a ConfigError.
func newOptions(opts []Option) (*options, error) {
	o := &options{}

	for _, opt := range opts {
		if opt == nil {
			return nil, configError(ErrNilOption)
		}

		opt(o)
	}

	if o.stream == nil {
		return nil, configError(ErrNoStream)
	}

	return o, nil
}

// retryable reports whether err should trigger another attempt. Errors
// marked permanent via Abort never retry. With no rescue predicates
// configured, everything else retries; otherwise the first matching
// predicate wins and no match means the error is fatal.
func (o *options) retryable(err error) bool {
	var marked Error
	if errors.As(err, &marked) && !marked.Temporary() {
		return false
	}

	if len(o.rescue) == 0 {
		return true
	}

	for _, pred := range o.rescue {
		if pred != nil && pred(err) {
			return true
		}
	}

	return false
}
