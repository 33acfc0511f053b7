package config

import "errors"

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid configuration")

	// ErrUnknownKeys is returned when the file contains keys no field accepts.
	ErrUnknownKeys = errors.New("config: unknown keys")
)
