// Package logging wraps zap behind a small interface so the rest of the
// crawler depends on a logging contract, not a concrete logger.
package logging

import (
	"go.uber.org/zap"
)

// Logger is the leveled, structured logging contract used throughout the
// crawler. Implementations must be safe for concurrent use, since workers,
// the frontier, and the robots cache all log from multiple goroutines.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

type zapLogger struct {
	inner *zap.Logger
}

// NewProduction builds a Logger with zap's production defaults (JSON
// encoding, epoch timestamps, info level and above).
func NewProduction() (Logger, error) {
	inner, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{inner: inner}, nil
}

// NewDevelopment builds a Logger with zap's development defaults (console
// encoding, debug level and above, stack traces on warn+).
func NewDevelopment() (Logger, error) {
	inner, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{inner: inner}, nil
}

// NewNop builds a Logger that discards everything; used in tests.
func NewNop() Logger {
	return &zapLogger{inner: zap.NewNop()}
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.inner.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.inner.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.inner.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.inner.Error(msg, fields...) }

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{inner: l.inner.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.inner.Sync()
}
