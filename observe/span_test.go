package observe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/amp-labs/amp-retry/retry"
)

func TestSpan_RecordsRetryEvents(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(t.Context(), "operation")

	hook := Span()
	hook(ctx, retry.Event{Attempt: 1, Delay: 10 * time.Millisecond, Err: assert.AnError})

	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "retry", events[0].Name)

	attrs := make(map[string]string)
	for _, kv := range events[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	assert.Equal(t, "1", attrs["retry.attempt"])
	assert.Equal(t, "10ms", attrs["retry.delay"])
	assert.Contains(t, attrs, "retry.error")
}

func TestSpan_NoopWithoutActiveSpan(t *testing.T) {
	t.Parallel()

	hook := Span()

	// No span in context: the hook must not panic or start spans itself.
	hook(context.Background(), retry.Event{Attempt: 0, Delay: time.Millisecond})
}
