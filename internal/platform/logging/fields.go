package logging

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// fields pairs args as key, value. A non-string key becomes arg_N and a
// trailing key gets a null value.
func fields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, (len(args)+1)/2+2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = fmt.Sprintf("arg_%d", i/2)
		}
		if i+1 == len(args) {
			out = append(out, zap.Any(key, nil))
			break
		}
		out = append(out, field(key, args[i+1]))
	}
	return out
}

func field(key string, value any) zap.Field {
	switch v := value.(type) {
	case error:
		return zap.NamedError(key, v)
	case fmt.Stringer:
		// decimal.Decimal and time.Duration
		return zap.Stringer(key, v)
	default:
		return zap.Any(key, v)
	}
}

func traceFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
