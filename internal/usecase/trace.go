package usecase

import (
	"context"

	"github.com/riskibarqy/fantasy-contest/internal/platform/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = tracing.New("fantasy-contest/internal/usecase", "usecase.")

func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return usecaseTracer.Start(ctx, name, attrs...)
}
