// Package logx constructs the zerolog logger used across the engine,
// with a console/JSON output switch selected at bootstrap.
package logx

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a root logger. format is "console" or "json"; level is any
// zerolog level name ("debug", "info", "warn", "error").
func New(level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w zerolog.ConsoleWriter
	if strings.ToLower(format) == "json" {
		return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
	}

	w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
