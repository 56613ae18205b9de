// Package log configures the process-wide slog default shared by the
// hireflow binaries and tags loggers with the module convention the
// services rely on.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default logger. level is one of debug, info, warn,
// error; format is text or json. Unknown values fall back to info and text.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a level name to its slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithModule returns the default logger tagged with the module name.
func WithModule(module string) *slog.Logger {
	return Named(nil, module)
}

// Named tags a logger with the module name, falling back to the default
// logger when given nil. Services use it so every log line carries the
// module attribute regardless of which logger they were constructed with.
func Named(logger *slog.Logger, module string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}

	return logger.With("module", module)
}
