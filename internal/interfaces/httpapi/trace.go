package httpapi

import (
	"context"

	"github.com/riskibarqy/fantasy-contest/internal/platform/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Only handler-level spans are recorded; response and middleware helpers
// stay inside the otelhttp server span.
var apiTracer = tracing.New("fantasy-contest/internal/interfaces/httpapi", "httpapi.Handler.")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return apiTracer.Start(ctx, name)
}
