package health

import "errors"

var (
	// ErrCheckTimeout is recorded when a check outlives the aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned by Aggregator.Check for unknown names.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrDuplicateChecker is returned when two checkers share a name.
	ErrDuplicateChecker = errors.New("health: duplicate checker name")
)
