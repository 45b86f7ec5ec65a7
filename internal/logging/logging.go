package logging

import (
	"io"
	"log/slog"
	"strings"
)

var level = new(slog.LevelVar)

// Configure installs a text handler writing to w as the default slog logger.
func Configure(w io.Writer, lvl string) *slog.Logger {
	level.Set(ParseLevel(lvl))
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
