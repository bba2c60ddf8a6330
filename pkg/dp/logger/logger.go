package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Logger provides structured logging with level-based filtering. The
// plain variants take a message plus slog-style key-value pairs; the
// f-variants format like fmt.Sprintf.
type Logger interface {
	Debug(msg string, args ...any)
	Debugf(format string, a ...any)
	Info(msg string, args ...any)
	Infof(format string, a ...any)
	Warn(msg string, args ...any)
	Warnf(format string, a ...any)
	Error(msg string, args ...any)
	Errorf(format string, a ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	logger   *slog.Logger
	logLevel LogLevel
}

// New creates a logger with the specified level.
// Accepts: "debug", "dbg", "info", "inf", "warn", "wrn", "error", "err"
// (case-insensitive); defaults to InfoLevel for anything else.
// Output format is JSON if LOG_FORMAT=json, otherwise human-readable text.
func New(logLevelStr string) Logger {
	level := parseLevel(logLevelStr)

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: toSlogLevel(level),
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: toSlogLevel(level),
		})
	}

	return &slogLogger{
		logger:   slog.New(handler),
		logLevel: level,
	}
}

func (l *slogLogger) Debug(msg string, args ...any) {
	if l.logLevel <= DebugLevel {
		l.logger.Debug(msg, args...)
	}
}

func (l *slogLogger) Debugf(format string, a ...any) {
	if l.logLevel <= DebugLevel {
		l.logger.Debug(fmt.Sprintf(format, a...))
	}
}

func (l *slogLogger) Info(msg string, args ...any) {
	if l.logLevel <= InfoLevel {
		l.logger.Info(msg, args...)
	}
}

func (l *slogLogger) Infof(format string, a ...any) {
	if l.logLevel <= InfoLevel {
		l.logger.Info(fmt.Sprintf(format, a...))
	}
}

func (l *slogLogger) Warn(msg string, args ...any) {
	if l.logLevel <= WarnLevel {
		l.logger.Warn(msg, args...)
	}
}

func (l *slogLogger) Warnf(format string, a ...any) {
	if l.logLevel <= WarnLevel {
		l.logger.Warn(fmt.Sprintf(format, a...))
	}
}

func (l *slogLogger) Error(msg string, args ...any) {
	if l.logLevel <= ErrorLevel {
		l.logger.Error(msg, args...)
	}
}

func (l *slogLogger) Errorf(format string, a ...any) {
	if l.logLevel <= ErrorLevel {
		l.logger.Error(fmt.Sprintf(format, a...))
	}
}

// With returns a new logger with additional contextual fields.
// The returned logger preserves the current log level.
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger:   l.logger.With(args...),
		logLevel: l.logLevel,
	}
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any)  {}
func (noopLogger) Debugf(format string, a ...any) {}
func (noopLogger) Info(msg string, args ...any)   {}
func (noopLogger) Infof(format string, a ...any)  {}
func (noopLogger) Warn(msg string, args ...any)   {}
func (noopLogger) Warnf(format string, a ...any)  {}
func (noopLogger) Error(msg string, args ...any)  {}
func (noopLogger) Errorf(format string, a ...any) {}
func (noopLogger) With(args ...any) Logger        { return noopLogger{} }

// NewNoopLogger creates a no-op logger that discards all log output.
// Useful for testing or components that don't require logging.
func NewNoopLogger() Logger {
	return noopLogger{}
}

func parseLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug", "dbg":
		return DebugLevel
	case "info", "inf":
		return InfoLevel
	case "warn", "wrn":
		return WarnLevel
	case "error", "err":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
