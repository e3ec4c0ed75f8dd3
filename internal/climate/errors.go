package climate

import "errors"

// ErrUnknownPolicy is returned when a policy name is not recognised.
var ErrUnknownPolicy = errors.New("climate: unknown policy")
