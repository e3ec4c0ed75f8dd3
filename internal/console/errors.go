package console

import "errors"

var (
	// ErrUsage is returned when a command has missing or malformed arguments.
	ErrUsage = errors.New("console: usage")

	// ErrStopped is returned by control calls once Run has returned.
	ErrStopped = errors.New("console: not running")
)
