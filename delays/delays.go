// Package delays provides composable, lazy sequences of wait durations for
// spacing out retry attempts. A Stream is built from a constructor
// (Constant, Linear, Exponential, ...) and shaped with combinators
// (Jitter, Randomize, Cap, Take, Expiry) that can be chained in any order.
//
// Streams never block and never sleep; they only describe delays. The retry
// engine (or any other consumer) is responsible for actually waiting.
//
// Basic usage:
//
//	stream := delays.Exponential(100*time.Millisecond, 2).
//	    Randomize(0.1).
//	    Cap(5 * time.Second).
//	    Expiry(30*time.Second, 0)
//
// All elements are non-negative. A zero element is meaningful: it means
// "retry immediately, without waiting".
package delays

import (
	"iter"
	"math"
	"time"
)

// Stream is a lazy, ordered, possibly infinite sequence of non-negative
// wait durations. It is a push iterator with the same shape as
// iter.Seq[time.Duration]; ranging over a Stream restarts it and produces a
// fresh, independent sequence.
//
// Streams produced by this package are infinite unless bounded by Take or
// Expiry; consumers must bound them one way or another.
type Stream func(yield func(time.Duration) bool)

// Default parameters for Exponential, mirroring the most common backoff
// configuration (10ms base, doubling).
const (
	DefaultInitial = 10 * time.Millisecond
	DefaultFactor  = 2.0
)

// Constant returns an infinite stream where every element equals d.
// Negative d is clamped to zero.
func Constant(d time.Duration) Stream {
	if d < 0 {
		d = 0
	}

	return func(yield func(time.Duration) bool) {
		for yield(d) {
		}
	}
}

// Linear returns an infinite stream whose i-th element (zero-indexed) is
// initial + i*increment. Elements are clamped to be non-negative, so a
// negative increment bottoms out at zero rather than going negative.
func Linear(initial, increment time.Duration) Stream {
	return func(yield func(time.Duration) bool) {
		cur := initial

		for {
			d := cur
			if d < 0 {
				d = 0
			}

			if !yield(d) {
				return
			}

			next := cur + increment
			if increment > 0 && next < cur {
				// Saturate instead of wrapping around.
				next = math.MaxInt64
			}

			cur = next
		}
	}
}

// Exponential returns an infinite stream whose i-th element is
// initial * factor^i. Each element is derived from the previous one by a
// single multiplication rather than recomputed with a power function, so
// large indexes saturate cleanly instead of drifting or overflowing.
//
// A factor <= 0 falls back to DefaultFactor. Negative initial is clamped
// to zero.
func Exponential(initial time.Duration, factor float64) Stream {
	if initial < 0 {
		initial = 0
	}

	if factor <= 0 {
		factor = DefaultFactor
	}

	return func(yield func(time.Duration) bool) {
		cur := initial

		for {
			if !yield(cur) {
				return
			}

			next := time.Duration(float64(cur) * factor)
			if factor > 1 && cur > 0 && next <= cur {
				// Saturate on overflow.
				next = math.MaxInt64
			}

			cur = next
		}
	}
}

// Of returns a finite stream that yields exactly the given durations, in
// order. Negative values are clamped to zero. Useful for tests and for
// fully hand-rolled delay schedules.
func Of(ds ...time.Duration) Stream {
	return func(yield func(time.Duration) bool) {
		for _, d := range ds {
			if d < 0 {
				d = 0
			}

			if !yield(d) {
				return
			}
		}
	}
}

// Cycle returns an infinite stream that repeats the given durations forever.
// Negative values are clamped to zero. Cycle with no arguments yields
// nothing (an empty stream).
func Cycle(ds ...time.Duration) Stream {
	return func(yield func(time.Duration) bool) {
		if len(ds) == 0 {
			return
		}

		for {
			for _, d := range ds {
				if d < 0 {
					d = 0
				}

				if !yield(d) {
					return
				}
			}
		}
	}
}

// Seq converts the stream to a standard iterator, so it composes with the
// iter package and any sequence library built on it.
func (s Stream) Seq() iter.Seq[time.Duration] {
	return iter.Seq[time.Duration](s)
}

// FromSeq adapts a standard iterator into a Stream. Negative elements are
// clamped to zero so the stream invariant holds regardless of the source.
func FromSeq(seq iter.Seq[time.Duration]) Stream {
	return func(yield func(time.Duration) bool) {
		for d := range seq {
			if d < 0 {
				d = 0
			}

			if !yield(d) {
				return
			}
		}
	}
}
