// Package policy loads declarative retry policies and translates them into
// delay streams and engine options. It is a convenience layer on top of the
// core: services that keep retry behavior in configuration files parse a
// Policy once and hand the resulting stream to retry.With.
//
// Example policy document:
//
//	backoff: exponential
//	delay: 100ms
//	factor: 2
//	randomize: 0.1
//	cap: 5s
//	budget: 30s
//
// Unknown keys are rejected at parse time, so a typo fails fast instead of
// silently misconfiguring retries.
package policy

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/amp-labs/amp-retry/delays"
	"github.com/amp-labs/amp-retry/retry"
)

// Recognized backoff kinds. An empty kind defaults to constant.
const (
	BackoffConstant    = "constant"
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
)

var (
	ErrUnknownBackoff = errors.New("policy: unknown backoff kind")
	ErrNegativeValue  = errors.New("policy: negative value")
)

// Policy is a declarative retry configuration. Zero values mean "not set":
// a zero cap, budget, or max_tries leaves the stream unbounded in that
// dimension, and a zero factor falls back to the exponential default.
type Policy struct {
	// Backoff selects the base stream: constant, linear, or exponential.
	Backoff string `json:"backoff"   yaml:"backoff"`
	// Delay is the constant delay, or the initial delay for linear and
	// exponential backoff.
	Delay Duration `json:"delay"     yaml:"delay"`
	// Increment is the per-attempt growth for linear backoff.
	Increment Duration `json:"increment" yaml:"increment"`
	// Factor is the multiplier for exponential backoff.
	Factor float64 `json:"factor"    yaml:"factor"`
	// Jitter replaces each delay with a random one in [1ms, delay].
	Jitter bool `json:"jitter"    yaml:"jitter"`
	// Randomize spreads each delay by the given proportion.
	Randomize float64 `json:"randomize" yaml:"randomize"`
	// Cap clamps every delay.
	Cap Duration `json:"cap"       yaml:"cap"`
	// MaxTries bounds the number of retries (the operation runs at most
	// MaxTries+1 times, counting the immediate first attempt).
	MaxTries int `json:"max_tries" yaml:"max_tries"`
	// Budget bounds the cumulative delay by wall-clock time.
	Budget Duration `json:"budget"    yaml:"budget"`
	// MinDelay is the floor Expiry applies to the remaining budget.
	MinDelay Duration `json:"min_delay" yaml:"min_delay"`
}

// Parse decodes a YAML (or JSON, which YAML subsumes) policy document.
// Unknown fields are an error.
func Parse(data []byte) (Policy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Policy
	if err := dec.Decode(&p); err != nil {
		return Policy{}, fmt.Errorf("policy: %w", err)
	}

	return p, nil
}

// Stream validates the policy and composes the delay stream it describes.
// Combinators apply in a fixed order: base, randomize, jitter, cap,
// max_tries, budget.
//
// Note that a budget starts counting when Stream is called, so build the
// stream immediately before handing it to the engine.
func (p Policy) Stream() (delays.Stream, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var s delays.Stream

	switch p.Backoff {
	case "", BackoffConstant:
		s = delays.Constant(p.Delay.Std())
	case BackoffLinear:
		s = delays.Linear(p.Delay.Std(), p.Increment.Std())
	case BackoffExponential:
		factor := p.Factor
		if factor == 0 {
			factor = delays.DefaultFactor
		}

		s = delays.Exponential(p.Delay.Std(), factor)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackoff, p.Backoff)
	}

	if p.Randomize > 0 {
		s = s.Randomize(p.Randomize)
	}

	if p.Jitter {
		s = s.Jitter()
	}

	if p.Cap > 0 {
		s = s.Cap(p.Cap.Std())
	}

	if p.MaxTries > 0 {
		s = s.Take(p.MaxTries)
	}

	if p.Budget > 0 {
		s = s.Expiry(p.Budget.Std(), p.MinDelay.Std())
	}

	return s, nil
}

// Options translates the policy into engine options for retry.Retry and
// friends.
func (p Policy) Options() ([]retry.Option, error) {
	s, err := p.Stream()
	if err != nil {
		return nil, err
	}

	return []retry.Option{retry.With(s)}, nil
}

func (p Policy) validate() error {
	for name, d := range map[string]Duration{
		"delay":     p.Delay,
		"increment": p.Increment,
		"cap":       p.Cap,
		"budget":    p.Budget,
		"min_delay": p.MinDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeValue, name)
		}
	}

	if p.Factor < 0 {
		return fmt.Errorf("%w: factor", ErrNegativeValue)
	}

	if p.Randomize < 0 {
		return fmt.Errorf("%w: randomize", ErrNegativeValue)
	}

	if p.MaxTries < 0 {
		return fmt.Errorf("%w: max_tries", ErrNegativeValue)
	}

	return nil
}
