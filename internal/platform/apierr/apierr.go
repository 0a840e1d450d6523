// Package apierr carries an HTTP status and a stable machine code from a
// service up to the handler that writes the response.
package apierr

import (
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return http.StatusText(e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, "unauthorized", err)
}

func TooLarge(err error) *Error {
	return New(http.StatusRequestEntityTooLarge, "file_too_large", err)
}

// Unavailable marks a dependency that is not configured or not reachable.
func Unavailable(code string, err error) *Error {
	return New(http.StatusServiceUnavailable, code, err)
}
