package auth

import "errors"

var (
	// ErrMissingToken is returned when no Authorization header is present.
	ErrMissingToken = errors.New("missing Authorization header")

	// ErrInvalidToken is returned when the bearer token is unknown.
	ErrInvalidToken = errors.New("invalid bearer token")
)
