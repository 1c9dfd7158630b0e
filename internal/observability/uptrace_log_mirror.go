package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/shopspring/decimal"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const logInstrumentationName = "fantasy-contest/internal/platform/logging"

// logMirror forwards service log records to the global OpenTelemetry logger
// provider, which Uptrace exports.
type logMirror struct {
	logger otellog.Logger
	now    func() time.Time
}

func newUptraceLogMirror(serviceVersion string) logging.MirrorFunc {
	m := &logMirror{
		logger: otelglobal.Logger(logInstrumentationName, otellog.WithInstrumentationVersion(serviceVersion)),
		now:    time.Now,
	}
	return m.emit
}

func (m *logMirror) emit(ctx context.Context, level logging.Level, msg string, args ...any) {
	if isHealthCheckLog(msg, args) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	severity := severityOf(level)
	if !m.logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
		return
	}

	var record otellog.Record
	ts := m.now().UTC()
	record.SetTimestamp(ts)
	record.SetObservedTimestamp(ts)
	record.SetSeverity(severity)
	record.SetSeverityText(strings.ToUpper(level.String()))
	record.SetEventName(msg)
	record.SetBody(otellog.StringValue(msg))
	record.AddAttributes(logAttributes(args)...)

	m.logger.Emit(ctx, record)
}

// isHealthCheckLog drops the access log line for probe traffic.
func isHealthCheckLog(msg string, args []any) bool {
	if msg != "http request" {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, _ := args[i].(string); key == "path" {
			path, _ := args[i+1].(string)
			return path == "/healthz"
		}
	}
	return false
}

func severityOf(level zapcore.Level) otellog.Severity {
	switch {
	case level <= zapcore.DebugLevel:
		return otellog.SeverityDebug
	case level == zapcore.InfoLevel:
		return otellog.SeverityInfo
	case level == zapcore.WarnLevel:
		return otellog.SeverityWarn
	case level == zapcore.ErrorLevel:
		return otellog.SeverityError
	default:
		return otellog.SeverityFatal
	}
}

// logAttributes pairs up key/value args the same way the zap facade does. A
// trailing key without a value becomes an empty attribute.
func logAttributes(args []any) []otellog.KeyValue {
	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = fmt.Sprintf("arg_%d", i/2)
		}
		if i+1 == len(args) {
			attrs = append(attrs, otellog.Empty(key))
			break
		}
		attrs = append(attrs, otellog.KeyValue{Key: key, Value: logValue(args[i+1])})
	}
	return attrs
}

func logValue(value any) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int32:
		return otellog.Int64Value(int64(v))
	case int64:
		return otellog.Int64Value(v)
	case float64:
		return otellog.Float64Value(v)
	case decimal.Decimal:
		return otellog.StringValue(v.String())
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(v.String())
	case error:
		return otellog.StringValue(v.Error())
	case []string:
		items := make([]otellog.Value, len(v))
		for i, item := range v {
			items[i] = otellog.StringValue(item)
		}
		return otellog.SliceValue(items...)
	case map[string]any:
		kvs := make([]otellog.KeyValue, 0, len(v))
		for key, item := range v {
			kvs = append(kvs, otellog.KeyValue{Key: key, Value: logValue(item)})
		}
		return otellog.MapValue(kvs...)
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	default:
		return otellog.StringValue(fmt.Sprintf("%v", v))
	}
}
