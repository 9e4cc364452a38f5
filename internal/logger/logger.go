// Package logger builds the zerolog logger every binary starts from.
package logger

import (
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

// New returns a JSON logger stamped with the service name. Error events
// logged with .Stack() render a pkg/errors stack trace; plain stdlib errors
// get a stack attached at log time so the field is never empty.
func New(serviceName string) zerolog.Logger {
	type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		// Errors that already carry a stack keep their original frames.
		if _, ok := err.(stackTracer); ok {
			return err
		}
		return pkgerrors.WithStack(err)
	}

	return zerolog.New(os.Stdout).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
