// Package observe provides ready-made retry hooks: structured logging,
// Prometheus metrics, and OpenTelemetry span events. The retry engine emits
// nothing on its own; attach one of these (or any combination via Join) with
// retry.WithHook.
//
// Example:
//
//	err := retry.Exec(ctx, op,
//	    retry.With(stream),
//	    retry.WithHook(observe.Join(observe.Slog(logger), observe.Metrics())),
//	)
package observe

import (
	"context"

	"github.com/amp-labs/amp-retry/retry"
)

// Join combines several hooks into one, invoking them in order. Nil hooks
// are skipped.
func Join(hooks ...retry.Hook) retry.Hook {
	return func(ctx context.Context, e retry.Event) {
		for _, h := range hooks {
			if h != nil {
				h(ctx, e)
			}
		}
	}
}
