package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/rando-engine/internal/config"
)

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w: JSON in production, text otherwise.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewCLI builds the text logger used by command line tools.
func NewCLI(level slog.Level, w io.Writer) *slog.Logger {
	return New(&config.Config{LogLevel: level}, w)
}

// Discard returns a logger that drops everything, for tests and quiet tools.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithRequestID adds request ID to logger context
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithWorld tags log lines with the world being queried
func WithWorld(logger *slog.Logger, world string) *slog.Logger {
	return logger.With("world", world)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With("error", err.Error())
}
