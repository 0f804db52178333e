// Package logger builds the process-wide zerolog logger: pretty console
// output in development, JSON elsewhere.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func New(env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	if env == "development" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Str("service", "sindri").Logger()
}
