package delays

import (
	"math"
	"math/rand"
	"time"
)

// Jitter replaces each delay d with a uniformly random whole-millisecond
// duration in [1ms, d], which prevents clients configured with the same
// backoff from retrying in lockstep. Delays under one millisecond
// (including zero) map to zero.
func (s Stream) Jitter() Stream {
	return s.JitterSrc(nil)
}

// JitterSrc is Jitter with an explicit random source. A nil source uses the
// shared math/rand source; pass a seeded *rand.Rand for reproducible
// sequences in tests.
func (s Stream) JitterSrc(src *rand.Rand) Stream {
	return func(yield func(time.Duration) bool) {
		s(func(d time.Duration) bool {
			return yield(jitterOne(d, src))
		})
	}
}

func jitterOne(d time.Duration, src *rand.Rand) time.Duration {
	ms := d.Milliseconds()
	if ms <= 0 {
		return 0
	}

	return time.Duration(1+int63n(src, ms)) * time.Millisecond
}

// Randomize spreads each delay d by up to round(d*proportion) milliseconds
// in either direction, drawn uniformly. The result never goes negative.
// A proportion of 0 leaves the stream unchanged; negative proportions are
// treated as 0.
func (s Stream) Randomize(proportion float64) Stream {
	return s.RandomizeSrc(proportion, nil)
}

// RandomizeSrc is Randomize with an explicit random source. A nil source
// uses the shared math/rand source.
func (s Stream) RandomizeSrc(proportion float64, src *rand.Rand) Stream {
	if proportion < 0 {
		proportion = 0
	}

	return func(yield func(time.Duration) bool) {
		s(func(d time.Duration) bool {
			return yield(randomizeOne(d, proportion, src))
		})
	}
}

func randomizeOne(d time.Duration, proportion float64, src *rand.Rand) time.Duration {
	ms := d.Milliseconds()

	spread := int64(math.Round(float64(ms) * proportion))
	if spread <= 0 {
		return d
	}

	ms += int63n(src, 2*spread+1) - spread
	if ms < 0 {
		ms = 0
	}

	return time.Duration(ms) * time.Millisecond
}

// int63n draws a uniform value in [0, n) from src, falling back to the
// shared source when src is nil.
func int63n(src *rand.Rand, n int64) int64 {
	if src != nil {
		return src.Int63n(n)
	}

	//nolint:gosec // G404: math/rand is sufficient for delay spreading; crypto/rand is unnecessary overhead
	return rand.Int63n(n)
}

// Cap clamps every element to at most limit. Elements already at or below
// the limit pass through unchanged. A negative limit is treated as zero.
func (s Stream) Cap(limit time.Duration) Stream {
	if limit < 0 {
		limit = 0
	}

	return func(yield func(time.Duration) bool) {
		s(func(d time.Duration) bool {
			if d > limit {
				d = limit
			}

			return yield(d)
		})
	}
}

// Take bounds the stream to its first n elements. n <= 0 yields an empty
// stream.
func (s Stream) Take(n int) Stream {
	return func(yield func(time.Duration) bool) {
		if n <= 0 {
			return
		}

		left := n

		s(func(d time.Duration) bool {
			if !yield(d) {
				return false
			}

			left--

			return left > 0
		})
	}
}
