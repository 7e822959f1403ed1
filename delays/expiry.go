package delays

import "time"

// Expiry bounds the stream by a wall-clock budget, turning a possibly
// infinite stream into a finite one. The deadline is fixed at the moment
// Expiry is called, not lazily per element; restarting iteration over the
// returned stream reuses the same deadline, while calling Expiry again
// computes a fresh one.
//
// For each upstream delay d, the remaining budget is max(deadline-now,
// minDelay). When d would meet or exceed what is left — or the budget has
// already run down to minDelay — the stream emits the remaining time as its
// final element and ends. Otherwise d passes through unchanged.
//
// The cumulative wait therefore never knowingly exceeds the budget. Time the
// consumer spends between elements (executing the retried operation, say)
// is outside the stream's control, which is why the budget bounds the total
// delay rather than the total elapsed time.
func (s Stream) Expiry(budget, minDelay time.Duration) Stream {
	deadline := time.Now().Add(budget)

	if minDelay < 0 {
		minDelay = 0
	}

	return func(yield func(time.Duration) bool) {
		exhausted := false

		s(func(d time.Duration) bool {
			if exhausted {
				return false
			}

			remaining := time.Until(deadline).Truncate(time.Millisecond)
			if remaining < minDelay {
				remaining = minDelay
			}

			if d >= remaining || remaining == minDelay {
				exhausted = true

				yield(remaining)

				return false
			}

			return yield(d)
		})
	}
}
