// Package logging is the service's structured logger: a key/value facade
// over zap with trace correlation and an optional process-wide mirror.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// ParseLevel accepts debug, info, warn/warning and error. Anything else is info.
func ParseLevel(raw string) Level {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "warning" {
		raw = "warn"
	}
	level, err := zapcore.ParseLevel(raw)
	if err != nil || level < LevelDebug || level > LevelError {
		return LevelInfo
	}
	return level
}

type Logger struct {
	zap    *zap.Logger
	synced atomic.Bool
}

// MirrorFunc receives every record that passes the level check.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var (
	defaultLogger atomic.Pointer[Logger]
	mirror        atomic.Pointer[MirrorFunc]
)

func init() {
	defaultLogger.Store(NewNop())
}

func NewJSON(level Level) *Logger {
	return NewJSONWriter(level, os.Stdout)
}

func NewJSONWriter(level Level, w io.Writer) *Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), level)
	// skip emit and the exported level method
	return FromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(LevelError)))
}

func NewNop() *Logger {
	return FromZap(zap.NewNop())
}

func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{zap: z}
}

func Default() *Logger {
	return defaultLogger.Load()
}

func SetDefault(logger *Logger) {
	if logger == nil {
		logger = NewNop()
	}
	defaultLogger.Store(logger)
}

// SetMirror installs fn for every logger in the process. nil removes it.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirror.Store(nil)
		return
	}
	mirror.Store(&fn)
}

func (l *Logger) orDefault() *Logger {
	if l == nil || l.zap == nil {
		return Default()
	}
	return l
}

func (l *Logger) Zap() *zap.Logger {
	return l.orDefault().zap
}

// Sync flushes buffered entries once; later calls are no-ops.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil || !l.synced.CompareAndSwap(false, true) {
		return nil
	}
	return l.zap.Sync()
}

func (l *Logger) With(args ...any) *Logger {
	return FromZap(l.orDefault().zap.With(fields(args)...))
}

// Named scopes the logger to a component, e.g. "settlement" or "ingestion".
func (l *Logger) Named(name string) *Logger {
	return FromZap(l.orDefault().zap.Named(name))
}

func (l *Logger) Debug(msg string, args ...any) { l.emit(nil, LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.emit(nil, LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.emit(nil, LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.emit(nil, LevelError, msg, args) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelError, msg, args)
}

func (l *Logger) emit(ctx context.Context, level Level, msg string, args []any) {
	ce := l.orDefault().zap.Check(level, msg)
	if ce == nil {
		return
	}
	ce.Write(append(fields(args), traceFields(ctx)...)...)

	if fn := mirror.Load(); fn != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		(*fn)(ctx, level, msg, args...)
	}
}
