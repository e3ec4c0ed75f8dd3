package device

import "github.com/nerrad567/homesim/internal/climate"

// behaviour is the per-kind part of a device. The interface is unexported so
// the set of implementations is closed to this package.
type behaviour interface {
	// reactToSensor handles an environmental reading for d.
	reactToSensor(d *Device, value int)

	// toggled runs after d has flipped and notified its listeners.
	toggled(d *Device)

	// policy returns the held climate policy, or nil.
	policy() climate.Policy

	// setPolicy replaces the held policy. It reports false when the kind
	// cannot hold one.
	setPolicy(p climate.Policy) bool
}

func newBehaviour(k Kind) behaviour {
	switch k {
	case KindFan:
		return fan{}
	case KindThermostat:
		return &thermostat{}
	default:
		return light{}
	}
}

// stateless provides the no-policy half of behaviour for lights and fans.
type stateless struct{}

func (stateless) toggled(*Device)              {}
func (stateless) policy() climate.Policy       { return nil }
func (stateless) setPolicy(climate.Policy) bool { return false }

type light struct{ stateless }

func (light) reactToSensor(d *Device, value int) {
	d.logger.Info("light received sensor reading", "device", d.name, "value", value)
}

type fan struct{ stateless }

func (fan) reactToSensor(d *Device, value int) {
	d.SetState(value > climate.ComfortThreshold)
}

// thermostat owns at most one policy. Replacing it drops the previous value
// in the same assignment, so there is never more than one current policy.
type thermostat struct {
	current climate.Policy
}

func (t *thermostat) reactToSensor(d *Device, value int) {
	next := climate.ForReading(value)
	t.current = next
	d.logger.Info("thermostat policy selected", "device", d.name, "value", value, "policy", next.Name())
}

func (t *thermostat) toggled(d *Device) {
	if d.on {
		d.ApplyPolicy()
	}
}

func (t *thermostat) policy() climate.Policy {
	return t.current
}

func (t *thermostat) setPolicy(p climate.Policy) bool {
	t.current = p
	return true
}
