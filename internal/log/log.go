// Package log wraps slog with the process-wide logger used by every component.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.Mutex
	logger *slog.Logger
)

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Init installs the global logger. JSON in production, text otherwise.
func Init(level, env string) *slog.Logger {
	return InitWriter(os.Stderr, level, env)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var l *slog.Logger
	if env == "production" {
		l = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		l = slog.New(slog.NewTextHandler(w, opts))
	}
	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

// L returns the global logger, initialising it at info level on first use.
func L() *slog.Logger {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		return Init("info", "")
	}
	return l
}

func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
