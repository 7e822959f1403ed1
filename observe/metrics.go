package observe

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/amp-labs/amp-retry/retry"
)

// Metric definitions with appropriate labels.
var (
	// retriesTotal counts retryable attempts by what triggered them:
	// "error" for a caught retryable error, "sentinel" for a retryable
	// return value (or a not-ready poll).
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "amp",
		Subsystem: "retry",
		Name:      "attempts_retried_total",
		Help:      "Total number of retried attempts by trigger (error or sentinel)",
	}, []string{"trigger"})

	// retryDelay tracks the waits the engine inserts between attempts.
	retryDelay = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "amp",
		Subsystem: "retry",
		Name:      "delay_seconds",
		Help:      "Delay inserted before the next retry attempt",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)

// Metrics returns a hook recording retry counts and delay distribution to
// the default Prometheus registry.
func Metrics() retry.Hook {
	return func(_ context.Context, e retry.Event) {
		trigger := "sentinel"
		if e.Err != nil {
			trigger = "error"
		}

		retriesTotal.WithLabelValues(trigger).Inc()
		retryDelay.Observe(e.Delay.Seconds())
	}
}
