// Package logger builds the zerolog logger shared by the binaries.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger at the given level. Empty or unknown level
// strings fall back to info.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}
