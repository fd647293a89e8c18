// logger.go configures diagnostic logging for the SDK.

package irontelemetry

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// newLogger returns the SDK's diagnostic logger. With debug off every log
// call is a no-op; with debug on, diagnostics go to stderr at debug level.
func newLogger(debug bool) zerolog.Logger {
	if !debug {
		return zerolog.Nop()
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Str("component", "irontelemetry").
		Logger()
}
