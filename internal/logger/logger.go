package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the process-wide logger. Every line is tagged with the service
// name so the weekly bootstrap can be traced across aggregated logs.
func New(env string) zerolog.Logger {
	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().
		Timestamp().
		Str("service", "guias-service").
		Logger()
	if env == "development" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return log
}
