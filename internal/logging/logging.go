package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a key/value structured logger backed by zap.
type Logger struct {
	s *zap.SugaredLogger
}

// New creates a JSON logger with provided level string.
func New(level string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(levelFromString(level))

	z, err := cfg.Build()
	if err != nil {
		z, _ = zap.NewProduction()
	}
	return &Logger{s: z.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		return NewNop()
	}
	return &Logger{s: z.Sugar()}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keyvals ...any) *Logger {
	if l == nil {
		return NewNop()
	}
	return &Logger{s: l.s.With(keyvals...)}
}

// Debug logs msg with key/value pairs at debug level.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if l != nil {
		l.s.Debugw(msg, keyvals...)
	}
}

// Info logs msg with key/value pairs at info level.
func (l *Logger) Info(msg string, keyvals ...any) {
	if l != nil {
		l.s.Infow(msg, keyvals...)
	}
}

// Warn logs msg with key/value pairs at warn level.
func (l *Logger) Warn(msg string, keyvals ...any) {
	if l != nil {
		l.s.Warnw(msg, keyvals...)
	}
}

// Error logs msg with key/value pairs at error level.
func (l *Logger) Error(msg string, keyvals ...any) {
	if l != nil {
		l.s.Errorw(msg, keyvals...)
	}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.s.Sync()
}

func levelFromString(value string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
