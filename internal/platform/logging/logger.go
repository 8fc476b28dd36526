package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger: JSON in production, text elsewhere.
func New(level, env string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, env)
}

func NewWithWriter(w io.Writer, level, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
