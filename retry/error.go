package retry

import "errors"

// Configuration problems detected before any attempt executes. They are
// returned wrapped in a ConfigError and are never retried.
var (
	ErrNoStream    = errors.New("no delay stream configured")
	ErrNoOperation = errors.New("no operation supplied")
	ErrNilOption   = errors.New("nil option")
)

// ErrWaitExpired is the default error returned by Wait when the delay stream
// runs out before the polled condition becomes ready.
var ErrWaitExpired = errors.New("wait expired before the condition was met")

// ConfigError reports an invalid retry configuration. It fails fast: the
// engine returns it before the first attempt, so a missing stream or
// operation never burns delay budget.
type ConfigError struct {
	err error
}

func (e *ConfigError) Error() string {
	return "retry: invalid configuration: " + e.err.Error()
}

// Unwrap exposes the underlying sentinel for errors.Is checks.
func (e *ConfigError) Unwrap() error {
	return e.err
}

func configError(err error) error {
	return &ConfigError{err: err}
}

// Error is an interface for errors that can indicate whether they are
// temporary (retryable) or permanent (non-retryable). Operations can return
// errors implementing this interface to control retry behavior regardless
// of the configured rescue predicates.
type Error interface {
	// Temporary returns true if the error is temporary and the operation
	// should be retried, false if retries should stop.
	Temporary() bool
	error
}

// permanentError wraps an error to mark it as permanent (non-retryable).
type permanentError struct {
	error
}

// Temporary returns false to indicate this error should not be retried.
func (e *permanentError) Temporary() bool { return false }

// Unwrap returns the underlying error for error chain unwrapping.
func (e *permanentError) Unwrap() error {
	return e.error
}

// Abort wraps an error to mark it as permanent, causing the retry loop to
// stop immediately without further attempts. Use this when you know an error
// is not transient and retrying would not help.
//
// Example:
//
//	if err := validateInput(data); err != nil {
//	    return retry.Abort(err)  // Don't retry validation errors
//	}
//	if err := makeAPICall(data); err != nil {
//	    return err  // Do retry API errors
//	}
func Abort(err error) Error {
	return &permanentError{err}
}

// unwrapAbort strips the Abort marker so a fatal error propagates exactly as
// the operation produced it.
func unwrapAbort(err error) error {
	var p *permanentError
	if errors.As(err, &p) {
		return p.error
	}

	return err
}
