package sensor

import "errors"

// Domain errors for the sensor package.
var (
	// ErrInvalidReading is returned when a sensor payload is not an integer.
	ErrInvalidReading = errors.New("sensor: invalid reading")

	// ErrBacklogFull is returned when a reading is dropped because the
	// consumer has fallen behind.
	ErrBacklogFull = errors.New("sensor: reading backlog full")
)
