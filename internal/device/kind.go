package device

import (
	"fmt"
	"strings"
)

// Kind is the closed set of device types the simulator understands.
type Kind string

// Kind constants.
const (
	KindLight      Kind = "Light"
	KindFan        Kind = "Fan"
	KindThermostat Kind = "Thermostat"
)

// AllKinds returns every supported kind in display order.
func AllKinds() []Kind {
	return []Kind{KindLight, KindFan, KindThermostat}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts a type name to a Kind, ignoring case.
func ParseKind(name string) (Kind, error) {
	trimmed := strings.TrimSpace(name)
	for _, k := range AllKinds() {
		if strings.EqualFold(trimmed, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid types: %s)", ErrInvalidKind, name, kindList())
}

func kindList() string {
	names := make([]string, 0, len(AllKinds()))
	for _, k := range AllKinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
