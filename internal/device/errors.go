package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // report and carry on
//	}
var (
	// ErrDeviceNotFound is returned when a device name does not resolve.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidKind is returned when a device type name is not recognised.
	ErrInvalidKind = errors.New("device: invalid type")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")
)
