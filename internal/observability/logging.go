// Package observability wires structured logging and Prometheus metrics for
// the census pipeline. There is no serving surface: a batch run optionally
// dumps its metrics to a textfile-collector file on exit.
package observability

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/paris-tree-census/internal/config"
)

// NewLogger builds a slog.Logger per the configured level and format.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
