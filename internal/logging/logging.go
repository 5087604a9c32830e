// Package logging builds the diagnostic logger. Diagnostics go to stderr
// and are separate from the localized messages printed by output.Console.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Level picks the log level from the verbosity flags. Quiet wins.
func Level(verbose, quiet bool) zerolog.Level {
	switch {
	case quiet:
		return zerolog.ErrorLevel
	case verbose:
		return zerolog.DebugLevel
	default:
		return zerolog.WarnLevel
	}
}

// New returns a console logger writing to w.
func New(w io.Writer, verbose, quiet bool) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(Level(verbose, quiet)).
		With().
		Timestamp().
		Logger()
}
