package compoundgo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with compoundgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithType adds the compound type name to the logger.
func (l *Logger) WithType(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("type", name),
	}
}

// WithMember adds a member name field to the logger.
func (l *Logger) WithMember(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("member", name),
	}
}

// WithRecordSize adds a record size field to the logger.
func (l *Logger) WithRecordSize(size int) *Logger {
	return &Logger{
		Logger: l.Logger.With("record_size", size),
	}
}

// LogEncode logs an encode operation.
func (l *Logger) LogEncode(records int, err error) {
	if err != nil {
		l.Error("encode failed",
			"records", records,
			"error", err,
		)
	} else {
		l.Debug("encode completed",
			"records", records,
		)
	}
}

// LogDecode logs a decode operation.
func (l *Logger) LogDecode(records int, err error) {
	if err != nil {
		l.Error("decode failed",
			"records", records,
			"error", err,
		)
	} else {
		l.Debug("decode completed",
			"records", records,
		)
	}
}

// LogRelease logs a release operation.
func (l *Logger) LogRelease(records, frees int, err error) {
	if err != nil {
		l.Error("release failed",
			"records", records,
			"error", err,
		)
	} else {
		l.Debug("release completed",
			"records", records,
			"frees", frees,
		)
	}
}
