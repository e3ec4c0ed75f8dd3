package device

import (
	"fmt"
	"strings"

	"github.com/nerrad567/homesim/internal/climate"
)

// maxNameLength bounds device names.
const maxNameLength = 100

// Device is a simulated on/off device.
//
// The zero value is not usable; construct devices with New or through a
// Registry.
type Device struct {
	name      string
	kind      Kind
	on        bool
	hub       hub
	behaviour behaviour
	logger    Logger
}

// New creates a device of the given kind. Devices start OFF with no
// listeners and, for thermostats, no policy.
func New(kind Kind, name string) (*Device, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q (valid types: %s)", ErrInvalidKind, kind, kindList())
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	return &Device{
		name:      name,
		kind:      kind,
		behaviour: newBehaviour(kind),
		logger:    noopLogger{},
	}, nil
}

// ValidateName checks that a device name is usable.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// SetLogger sets the logger used for sensor and policy messages.
func (d *Device) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	d.logger = logger
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Kind returns the device kind.
func (d *Device) Kind() Kind { return d.kind }

// State reports whether the device is on.
func (d *Device) State() bool { return d.on }

// Attach appends a listener. Listeners are not de-duplicated and cannot be
// detached.
func (d *Device) Attach(l Listener) {
	d.hub.attach(l)
}

// ListenerCount returns the number of attached listeners.
func (d *Device) ListenerCount() int {
	return len(d.hub.listeners)
}

// Toggle flips the device state and always notifies. A thermostat switched
// on applies its held policy afterwards.
func (d *Device) Toggle() {
	d.on = !d.on
	d.hub.notify(d.event())
	d.behaviour.toggled(d)
}

// SetState sets the device state. Listeners are notified only when the state
// actually changes; the return value reports whether it did.
func (d *Device) SetState(on bool) bool {
	if d.on == on {
		return false
	}
	d.on = on
	d.hub.notify(d.event())
	return true
}

// ReactToSensor handles an environmental reading according to the device kind.
func (d *Device) ReactToSensor(value int) {
	d.behaviour.reactToSensor(d, value)
}

// Policy returns the thermostat's current climate policy, or nil if none is
// held or the device is not a thermostat.
func (d *Device) Policy() climate.Policy {
	return d.behaviour.policy()
}

// SetPolicy replaces the thermostat's climate policy. It reports false for
// kinds that cannot hold a policy.
func (d *Device) SetPolicy(p climate.Policy) bool {
	return d.behaviour.setPolicy(p)
}

// ApplyPolicy applies the held climate policy, if any, and tells policy
// listeners about the effect. It is a no-op when no policy is held.
func (d *Device) ApplyPolicy() {
	p := d.behaviour.policy()
	if p == nil {
		return
	}
	effect := p.Apply()
	d.logger.Debug("climate policy applied", "device", d.name, "policy", effect.Policy, "setpoint", effect.Setpoint)
	d.hub.notifyPolicy(d.name, effect)
}

// String returns a short human-readable description.
func (d *Device) String() string {
	return fmt.Sprintf("%s %q (%s)", d.kind, d.name, onOff(d.on))
}

func (d *Device) event() Event {
	return Event{Device: d.name, Kind: d.kind, On: d.on}
}

// onOff renders a state as ON or OFF.
func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// StateLabel renders a state as ON or OFF.
func StateLabel(on bool) string {
	return onOff(on)
}
