package vscroll

import (
	"log/slog"
	"os"
)

var logLevel = new(slog.LevelVar)

func init() {
	if os.Getenv("VSCROLL_DEBUG") != "" {
		logLevel.Set(slog.LevelDebug)
	} else {
		logLevel.Set(slog.LevelInfo)
	}
}

// SetLogLevel changes the level of the package logger.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// defaultLogger writes to stderr. Applications owning the terminal should
// pass their own logger (see WithLogger) or call SetLogger.
var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

// SetLogger replaces the logger used by primitives that were not given one
// explicitly.
func SetLogger(logger *slog.Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// LogLevel exposes the level variable so handlers created elsewhere can share
// it.
func LogLevel() *slog.LevelVar {
	return logLevel
}
