package observe

import (
	"context"
	"log/slog"

	"github.com/amp-labs/amp-retry/retry"
)

// Slog returns a hook that logs each retry at warn level, tagged with the
// attempt number, the upcoming delay, and the invocation ID so all attempts
// of one loop can be correlated. A nil logger uses slog.Default().
func Slog(log *slog.Logger) retry.Hook {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, e retry.Event) {
		attrs := []slog.Attr{
			slog.Uint64("attempt", uint64(e.Attempt)),
			slog.Duration("delay", e.Delay),
			slog.String("invocation", retry.Invocation(ctx).String()),
		}

		if e.Err != nil {
			attrs = append(attrs, slog.String("error", e.Err.Error()))
		}

		log.LogAttrs(ctx, slog.LevelWarn, "operation failed, retrying", attrs...)
	}
}
