package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func parentContext() context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestStart_WithoutParentIsNoop(t *testing.T) {
	tr := New("test", "")
	ctx := context.Background()

	got, span := tr.Start(ctx, "usecase.Settle")
	defer span.End()

	assert.Equal(t, ctx, got)
	assert.False(t, span.SpanContext().IsValid())
}

func TestStart_PrefixFilter(t *testing.T) {
	tr := New("test", "httpapi.Handler.")
	ctx := parentContext()

	got, span := tr.Start(ctx, "httpapi.writeJSON")
	defer span.End()
	assert.Equal(t, ctx, got)

	got, span = tr.Start(ctx, "")
	defer span.End()
	assert.Equal(t, ctx, got)
}

func TestStart_UnderParentKeepsTrace(t *testing.T) {
	tr := New("test", "usecase.")
	ctx := parentContext()

	got, span := tr.Start(ctx, "usecase.SettlementEngine.Settle")
	defer span.End()

	assert.Equal(t, trace.TraceID{1}, trace.SpanContextFromContext(got).TraceID())
}
