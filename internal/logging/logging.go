// Package logging builds the process slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rcliao/itinerary/internal/config"
)

// New returns a logger writing to stderr at the configured level and format.
func New(cfg config.LogConfig) *slog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
