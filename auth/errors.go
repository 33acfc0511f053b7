package auth

import "errors"

// Sentinel errors for token handling.
var (
	ErrNoToken        = errors.New("auth: no token")
	ErrTokenMalformed = errors.New("auth: token malformed")
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrEmptyPath      = errors.New("auth: empty token file path")
)
