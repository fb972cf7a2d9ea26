// Package logging wraps log/slog behind the same Debug/Info/Error call
// shape the teacher's pkg/logger exposes, but with slog's structured
// key/value fields in place of the teacher's printf-style format strings
// (the way Polqt-golang-journey's session and transport packages log:
// slog.Warn("broadcast failed", "session", id, "err", err)).
package logging

import (
	"log/slog"
	"os"
)

// Logger is a thin handle around a *slog.Logger. The zero value is not
// usable; construct one with New.
type Logger struct {
	logger *slog.Logger
}

// New builds a Logger from the LOG_LEVEL environment variable, mirroring
// the teacher's logger.Init() reading the same variable. Recognized
// values are "debug", "info", "warn", and "error" (case-insensitive);
// anything else, including unset, defaults to info.
func New() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFromEnv(),
	}))}
}

func levelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a Logger that attaches args to every subsequent call,
// the way a session or connection tags its log lines with its own id.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
