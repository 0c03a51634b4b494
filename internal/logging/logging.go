// Package logging provides the structured logger factory for the promotion
// engine.
//
// It configures [zerolog] with a JSON writer and a configurable minimum
// level. In the dev environment output switches to the human-readable
// console writer.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger writing to stderr for the given environment.
// Accepted level strings (case-insensitive): "debug", "info", "warn",
// "error". An empty string defaults to "info".
func New(env, level string) zerolog.Logger {
	return NewWithWriter(env, level, os.Stderr)
}

// NewWithWriter creates a logger writing to w for the given environment.
func NewWithWriter(env, level string, w io.Writer) zerolog.Logger {
	if env == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel converts a level string to a [zerolog.Level].
// Returns [zerolog.InfoLevel] for unrecognised values.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
