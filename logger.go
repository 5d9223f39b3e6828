package langid

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with langid-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSource adds the database source (path or blob name) to the logger.
func (l *Logger) WithSource(source string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", source),
	}
}

// LogLoad logs a database load.
func (l *Logger) LogLoad(ctx context.Context, source string, languages int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "database load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "database loaded",
			"source", source,
			"languages", languages,
			"elapsed", elapsed,
		)
	}
}

// LogFallback logs that no database could be loaded and an empty
// identifier is used instead.
func (l *Logger) LogFallback(ctx context.Context, tried []string, err error) {
	l.WarnContext(ctx, "no language database found, identification disabled",
		"tried", tried,
		"error", err,
	)
}

// LogIdentify logs an identification call.
func (l *Logger) LogIdentify(ctx context.Context, bytes, matched int, elapsed time.Duration) {
	l.DebugContext(ctx, "identify completed",
		"bytes", bytes,
		"languages_matched", matched,
		"elapsed", elapsed,
	)
}
