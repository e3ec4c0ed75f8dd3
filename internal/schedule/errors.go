package schedule

import "errors"

// Domain errors for the schedule package.
var (
	// ErrUnknownTrigger is returned when a trigger keyword is not recognised.
	ErrUnknownTrigger = errors.New("schedule: unknown trigger type")

	// ErrInvalidInterval is returned for a periodic interval of zero or less.
	ErrInvalidInterval = errors.New("schedule: periodic interval must be positive")
)
