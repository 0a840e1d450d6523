// Package errors holds sentinels shared by repos and services. Services turn
// them into apierr values before they reach a handler.
package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("sign in required")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedMedia marks uploads the service will not store.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
