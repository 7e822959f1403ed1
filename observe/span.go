package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/amp-labs/amp-retry/retry"
)

// Span returns a hook that records each retry as an event on the span
// already active in the context. It starts no spans of its own and is a
// no-op when the span is not recording.
func Span() retry.Hook {
	return func(ctx context.Context, e retry.Event) {
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		attrs := []attribute.KeyValue{
			attribute.Int("retry.attempt", int(e.Attempt)), //nolint:gosec // G115: attempt counts stay far below MaxInt
			attribute.Stringer("retry.delay", e.Delay),
			attribute.Stringer("retry.invocation", retry.Invocation(ctx)),
		}

		if e.Err != nil {
			attrs = append(attrs, attribute.String("retry.error", e.Err.Error()))
		}

		span.AddEvent("retry", trace.WithAttributes(attrs...))
	}
}
