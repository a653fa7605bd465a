// Package interfaces defines core domain contracts.
//
//nolint:revive // Package name 'interfaces' is intentional for domain layer
package interfaces

import (
	"context"
	"log/slog"

	slogctx "github.com/veqryn/slog-context"
)

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs debug-level messages
	Debug(msg string, fields ...Field)

	// Info logs informational messages
	Info(msg string, fields ...Field)

	// Warn logs warning messages
	Warn(msg string, fields ...Field)

	// Error logs error messages
	Error(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (convenience function)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// NoOpLogger is a logger that does nothing (useful for tests)
type NoOpLogger struct{}

// Debug does nothing (no-op implementation)
func (n *NoOpLogger) Debug(_ string, _ ...Field) {}

// Info does nothing (no-op implementation)
func (n *NoOpLogger) Info(_ string, _ ...Field) {}

// Warn does nothing (no-op implementation)
func (n *NoOpLogger) Warn(_ string, _ ...Field) {}

// Error does nothing (no-op implementation)
func (n *NoOpLogger) Error(_ string, _ ...Field) {}

// SlogLogger adapts a *slog.Logger to the Logger interface
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps l; a nil l uses slog.Default()
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{logger: l}
}

// LoggerFromContext returns the slog logger carried by ctx as a Logger.
// Without one it falls back to slog.Default().
func LoggerFromContext(ctx context.Context) Logger {
	return NewSlogLogger(slogctx.FromCtx(ctx))
}

// Debug logs debug-level messages
func (s *SlogLogger) Debug(msg string, fields ...Field) {
	s.logger.Debug(msg, attrs(fields)...)
}

// Info logs informational messages
func (s *SlogLogger) Info(msg string, fields ...Field) {
	s.logger.Info(msg, attrs(fields)...)
}

// Warn logs warning messages
func (s *SlogLogger) Warn(msg string, fields ...Field) {
	s.logger.Warn(msg, attrs(fields)...)
}

// Error logs error messages
func (s *SlogLogger) Error(msg string, fields ...Field) {
	s.logger.Error(msg, attrs(fields)...)
}

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}
