package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a configured slog.Logger based on configuration. Source
// locations are attached outside production, where log volume is low enough
// to afford them.
func NewLogger(cfg *Config) *slog.Logger {
	return slog.New(newLogHandler(cfg, os.Stdout))
}

func newLogHandler(cfg *Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{AddSource: !cfg.IsProduction()}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
