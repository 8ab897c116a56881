package runtime

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// ActivityIDFromContext derives a stable activity identifier from the
// OpenTelemetry span context carried by ctx, so events written inside a
// traced operation chain up under the same correlation id as the span. The
// id is built from the trace id's high half and the span id, which keeps it
// unique per span while letting a decoder group events by trace prefix.
// Returns false when ctx carries no valid span.
func ActivityIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return uuid.UUID{}, false
	}
	traceID := sc.TraceID()
	spanID := sc.SpanID()
	var id uuid.UUID
	copy(id[:8], traceID[:8])
	copy(id[8:], spanID[:])
	return id, true
}

// WithActivityFromContext is WithActivity sourced from the ambient span
// context; it is a no-op option when the context carries none.
func WithActivityFromContext(ctx context.Context) EventOption {
	id, ok := ActivityIDFromContext(ctx)
	if !ok {
		return func(*EventOptions) {}
	}
	return WithActivity(id)
}
