// Package logging builds the slog loggers used by the command line.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Config selects the level and output format of a logger.
type Config struct {
	Level  string
	Format string
}

// New returns a logger writing to w. Unknown levels fall back to warn and
// unknown formats to text.
func New(w io.Writer, conf Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(conf.Level),
	}

	return slog.New(getHandler(w, conf.Format, opts))
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func getHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	switch strings.ToLower(format) {
	case "json":
		return slog.NewJSONHandler(w, opts)

	default:
		return slog.NewTextHandler(w, opts)
	}
}
