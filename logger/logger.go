// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"

	"github.com/nathoo/navishell/config"
)

// Setup builds a logger writing to w: JSON in production, text otherwise.
// It becomes the slog default.
func Setup(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithSession adds the session name to logger context.
func WithSession(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("session", name)
}

// WithError adds error to logger context.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
