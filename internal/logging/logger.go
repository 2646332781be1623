// Package logging provides component-scoped structured loggers backed by zap.
package logging

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

// Fields carries structured key/value pairs for a single log entry.
type Fields map[string]interface{}

var (
	baseMu sync.RWMutex
	base   *zap.Logger
	once   sync.Once
)

// LoggerV2 is a named structured logger.
type LoggerV2 struct {
	name   string
	fields Fields
}

// NewLoggerV2 returns a logger that tags every entry with the component name.
func NewLoggerV2(name string) *LoggerV2 {
	return &LoggerV2{name: name}
}

// With returns a child logger that always includes the given fields.
func (l *LoggerV2) With(fields Fields) *LoggerV2 {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &LoggerV2{name: l.name, fields: merged}
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.zap().Debug(msg, l.toZap(fields)...)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.zap().Info(msg, l.toZap(fields)...)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.zap().Warn(msg, l.toZap(fields)...)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.zap().Error(msg, l.toZap(fields)...)
}

// Fatal logs and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.zap().Fatal(msg, l.toZap(fields)...)
}

// zap returns the base logger with the caller reported one frame above LoggerV2.
func (l *LoggerV2) zap() *zap.Logger {
	z := Base().WithOptions(zap.AddCallerSkip(1))
	if l == nil {
		return z
	}
	if l.name != "" {
		z = z.Named(l.name)
	}
	return z
}

func (l *LoggerV2) toZap(extra []Fields) []zap.Field {
	var all Fields
	if l != nil && len(l.fields) > 0 {
		all = make(Fields, len(l.fields))
		for k, v := range l.fields {
			all[k] = v
		}
	}
	for _, f := range extra {
		if all == nil {
			all = make(Fields, len(f))
		}
		for k, v := range f {
			all[k] = v
		}
	}
	if len(all) == 0 {
		return nil
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, all[k]))
	}
	return out
}

// Info logs through the unnamed base logger.
func Info(msg string, fields ...Fields) {
	l := &LoggerV2{}
	l.zap().WithOptions(zap.AddCallerSkip(1)).Info(msg, l.toZap(fields)...)
}

// Infof logs a printf-style message through the base logger.
func Infof(format string, args ...interface{}) {
	Base().WithOptions(zap.AddCallerSkip(1)).Info(fmt.Sprintf(format, args...))
}

// Base returns the process-wide zap logger, building it from LOG_LEVEL on first use.
func Base() *zap.Logger {
	once.Do(func() {
		baseMu.Lock()
		defer baseMu.Unlock()
		if base != nil {
			return
		}
		z, err := New(os.Getenv("LOG_LEVEL"))
		if err != nil {
			z = zap.NewNop()
		}
		base = z
	})
	baseMu.RLock()
	defer baseMu.RUnlock()
	return base
}

// SetBase replaces the process-wide logger. Tests use it with zap.NewNop.
func SetBase(z *zap.Logger) {
	once.Do(func() {})
	baseMu.Lock()
	base = z
	baseMu.Unlock()
}

// Sync flushes buffered entries.
func Sync() {
	_ = Base().Sync()
}

// New constructs a JSON zap logger at the given level.
func New(levelName string) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(levelName)))); err != nil || strings.TrimSpace(levelName) == "" {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		NameKey:    "component",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeName:    zapcore.FullNameEncoder,
		CallerKey:     "caller",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		StacktraceKey: "stacktrace",
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}

	return cfg.Build()
}

type requestIDKey struct{}

// ContextWithRequestID stores the request id used to correlate logs and events.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
