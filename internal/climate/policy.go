package climate

import (
	"fmt"
	"strings"
)

// ComfortThreshold is the sensor reading above which Comfort is selected.
// Readings at or below the threshold select Eco.
const ComfortThreshold = 28

// Policy names.
const (
	NameEco     = "eco"
	NameComfort = "comfort"
)

// Policy is a thermostat setpoint regime.
//
// Implementations must be stateless: the same value may be handed to any
// number of thermostats.
type Policy interface {
	// Name returns the lower-case policy identifier (e.g., "eco").
	Name() string

	// Setpoint returns the target temperature in °F.
	Setpoint() float64

	// Apply returns the observable effect of the regime taking effect.
	Apply() Effect
}

// Effect describes a policy being applied to a thermostat.
type Effect struct {
	Policy   string  `json:"policy"`
	Setpoint float64 `json:"setpoint"`
	Message  string  `json:"message"`
}

// Eco is the energy-saving regime.
type Eco struct{}

// Name implements Policy.
func (Eco) Name() string { return NameEco }

// Setpoint implements Policy.
func (Eco) Setpoint() float64 { return 68 }

// Apply implements Policy.
func (e Eco) Apply() Effect {
	return Effect{
		Policy:   e.Name(),
		Setpoint: e.Setpoint(),
		Message:  fmt.Sprintf("Eco Mode: Set to %.0f°F for energy saving.", e.Setpoint()),
	}
}

// Comfort is the comfort regime.
type Comfort struct{}

// Name implements Policy.
func (Comfort) Name() string { return NameComfort }

// Setpoint implements Policy.
func (Comfort) Setpoint() float64 { return 72 }

// Apply implements Policy.
func (c Comfort) Apply() Effect {
	return Effect{
		Policy:   c.Name(),
		Setpoint: c.Setpoint(),
		Message:  fmt.Sprintf("Comfort Mode: Set to %.0f°F for comfort.", c.Setpoint()),
	}
}

// ForReading selects the policy for an environmental reading.
func ForReading(value int) Policy {
	if value > ComfortThreshold {
		return Comfort{}
	}
	return Eco{}
}

// Parse returns the policy with the given name (case-insensitive).
func Parse(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameEco:
		return Eco{}, nil
	case NameComfort:
		return Comfort{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}
