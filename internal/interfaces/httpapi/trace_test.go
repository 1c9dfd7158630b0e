package httpapi

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestStartSpan_OnlyHandlerSpansUnderParent(t *testing.T) {
	parent := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{7},
		SpanID:     trace.SpanID{9},
		TraceFlags: trace.FlagsSampled,
	}))

	tests := []struct {
		name      string
		ctx       context.Context
		span      string
		wantChild bool
	}{
		{name: "handler span", ctx: parent, span: "httpapi.Handler.RunSettleJob", wantChild: true},
		{name: "helper span", ctx: parent, span: "httpapi.classify"},
		{name: "json writer span", ctx: parent, span: "httpapi.writeJSON"},
		{name: "no parent", ctx: context.Background(), span: "httpapi.Handler.Healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, span := startSpan(tt.ctx, tt.span)
			defer span.End()

			gotChild := ctx != tt.ctx
			if gotChild != tt.wantChild {
				t.Fatalf("startSpan(%q) child=%v want=%v", tt.span, gotChild, tt.wantChild)
			}
		})
	}
}
