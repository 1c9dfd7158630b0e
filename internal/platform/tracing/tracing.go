// Package tracing opens child spans for service layers. A span is only
// started under a valid parent, so helpers invoked outside a request or job
// trace never create root traces of their own.
package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var noopSpan = trace.SpanFromContext(context.Background())

type Tracer struct {
	name   string
	prefix string
}

// New returns a Tracer for one instrumentation scope. When prefix is set,
// only span names starting with it are recorded.
func New(instrumentation, prefix string) Tracer {
	return Tracer{name: instrumentation, prefix: prefix}
}

func (t Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" || !strings.HasPrefix(name, t.prefix) {
		return ctx, noopSpan
	}
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noopSpan
	}
	return otel.Tracer(t.name).Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartRoot always opens a span, for entry points such as scheduled jobs and
// CLI commands that have no incoming trace.
func (t Tracer) StartRoot(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(t.name).Start(ctx, name, trace.WithAttributes(attrs...))
}
