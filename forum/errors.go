package forum

import "errors"

// Sentinel errors.
var (
	ErrNilClient   = errors.New("forum: client is required")
	ErrEmptyID     = errors.New("forum: empty category id")
	ErrEmptyName   = errors.New("forum: category name is required")
	ErrEmptyResult = errors.New("forum: server returned no data")
)
