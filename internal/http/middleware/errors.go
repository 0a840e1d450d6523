package middleware

import "errors"

var (
	errMissingToken = errors.New("missing or invalid token")
	errRateLimited  = errors.New("too many requests, slow down")
)
