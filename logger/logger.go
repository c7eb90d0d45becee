package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the application logger. Console output is meant for humans;
// pass debug=true to lower the level.
func New(debug bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
