// Package logging provides a minimal structured logging abstraction so the
// broker, communicator and orchestrator can log without binding callers to a
// concrete backend. It includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's log/slog
//   - NoOpLogger for silent operation (testing, embedded use)
//   - WorkflowLogger adding session/role context to every entry
//
// The interface is intentionally tiny; plug in any structured logger.
package logging

import (
	"log/slog"
	"os"
)

// Logger is the minimal logging interface used throughout AgentWire.
// Args follow slog conventions: alternating keys and values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement Logger.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from an existing *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{Logger: logger}
}

// NewJSONLogger creates a Logger emitting JSON records to stdout at the
// given level.
func NewJSONLogger(level slog.Level) *SlogAdapter {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &SlogAdapter{Logger: slog.New(h)}
}

// NewTextLogger creates a Logger emitting human-readable records to stderr
// at the given level.
func NewTextLogger(level slog.Level) *SlogAdapter {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &SlogAdapter{Logger: slog.New(h)}
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NoOpLogger discards all log messages. Useful for tests or when logging is
// disabled.
type NoOpLogger struct{}

// Debug discards the message.
func (NoOpLogger) Debug(string, ...any) {}

// Info discards the message.
func (NoOpLogger) Info(string, ...any) {}

// Warn discards the message.
func (NoOpLogger) Warn(string, ...any) {}

// Error discards the message.
func (NoOpLogger) Error(string, ...any) {}

// WorkflowLogger wraps a Logger, attaching fixed key/value context (session
// id, role, component) to every entry. Cheap to copy via With.
type WorkflowLogger struct {
	inner Logger
	attrs []any
}

// NewWorkflowLogger wraps l; a nil l yields a NoOpLogger-backed instance.
func NewWorkflowLogger(l Logger) *WorkflowLogger {
	if l == nil {
		l = NoOpLogger{}
	}
	return &WorkflowLogger{inner: l}
}

// With returns a copy carrying an additional key/value pair.
func (w *WorkflowLogger) With(key string, value any) *WorkflowLogger {
	attrs := make([]any, 0, len(w.attrs)+2)
	attrs = append(attrs, w.attrs...)
	attrs = append(attrs, key, value)
	return &WorkflowLogger{inner: w.inner, attrs: attrs}
}

// WithSession returns a copy tagged with a session id.
func (w *WorkflowLogger) WithSession(sessionID string) *WorkflowLogger {
	return w.With("session_id", sessionID)
}

// WithRole returns a copy tagged with an agent role.
func (w *WorkflowLogger) WithRole(role string) *WorkflowLogger {
	return w.With("role", role)
}

func (w *WorkflowLogger) merge(args []any) []any {
	if len(w.attrs) == 0 {
		return args
	}
	out := make([]any, 0, len(w.attrs)+len(args))
	out = append(out, w.attrs...)
	out = append(out, args...)
	return out
}

// Debug logs at debug level with attached context.
func (w *WorkflowLogger) Debug(msg string, args ...any) { w.inner.Debug(msg, w.merge(args)...) }

// Info logs at info level with attached context.
func (w *WorkflowLogger) Info(msg string, args ...any) { w.inner.Info(msg, w.merge(args)...) }

// Warn logs at warn level with attached context.
func (w *WorkflowLogger) Warn(msg string, args ...any) { w.inner.Warn(msg, w.merge(args)...) }

// Error logs at error level with attached context.
func (w *WorkflowLogger) Error(msg string, args ...any) { w.inner.Error(msg, w.merge(args)...) }
