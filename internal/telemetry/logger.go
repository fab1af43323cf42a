package telemetry

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger configures the global zerolog logger. Debug wins over the
// configured level; quiet raises it to errors only.
func SetupLogger(level string, debug, quiet bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	switch {
	case debug:
		parsed = zerolog.DebugLevel
	case quiet:
		parsed = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(parsed)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
