// Package logger builds the structured zerolog loggers used by the service
// layer, the HTTP API and the CLI.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys used by the logger.
type ContextKey string

// LoggerKey is the context key for the logger instance.
const LoggerKey ContextKey = "logger"

// New creates a logger writing to stderr. Format "json" emits one JSON object
// per event; anything else uses the human console writer. An unknown level
// falls back to info.
func New(level, format string) zerolog.Logger {
	var w io.Writer = os.Stderr
	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w).Level(ParseLevel(level))
}

// NewWithWriter creates a logger with a custom writer.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// WithContext adds the logger to the context.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from the context or returns a disabled one.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithFields adds structured fields to a logger.
func WithFields(logger zerolog.Logger, fields map[string]any) zerolog.Logger {
	ctx := logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}
