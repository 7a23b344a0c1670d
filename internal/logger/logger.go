package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. An empty level means info; unknown levels
// fall back to debug.
func New(env, level string) zerolog.Logger {
	// Cloud log collectors parse the level from "severity".
	zerolog.LevelFieldName = "severity"
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.DebugLevel
	}
	return logger.Level(lvl)
}
