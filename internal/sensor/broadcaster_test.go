package sensor

import (
	"testing"

	"github.com/nerrad567/homesim/internal/climate"
	"github.com/nerrad567/homesim/internal/device"
)

func TestTriggerOrderAndSynchrony(t *testing.T) {
	b := NewBroadcaster()
	var got []string
	b.Subscribe(SubscriberFunc(func(v int) { got = append(got, "a") }))
	b.Subscribe(SubscriberFunc(func(v int) { got = append(got, "b") }))
	b.Subscribe(SubscriberFunc(func(v int) { got = append(got, "c") }))

	b.Trigger(10)

	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("delivery order = %v, want [a b c]", got)
	}
}

func TestTriggerNoDeduplication(t *testing.T) {
	b := NewBroadcaster()
	calls := 0
	s := SubscriberFunc(func(int) { calls++ })
	b.Subscribe(s)
	b.Subscribe(s)

	b.Trigger(1)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if b.Subscribers() != 2 {
		t.Errorf("Subscribers() = %d, want 2", b.Subscribers())
	}
}

func TestLast(t *testing.T) {
	b := NewBroadcaster()
	if _, ok := b.Last(); ok {
		t.Error("Last() should report no reading initially")
	}
	b.Trigger(21)
	b.Trigger(31)
	if v, ok := b.Last(); !ok || v != 31 {
		t.Errorf("Last() = %d, %v; want 31, true", v, ok)
	}
}

func TestTriggerWithoutSubscribers(t *testing.T) {
	b := NewBroadcaster()
	b.Trigger(5) // must not panic
}

// A thermostat switched to Comfort by a reading of 29 applies Comfort, not
// Eco, when toggled on afterwards.
func TestThermostatPolicyFollowsBroadcast(t *testing.T) {
	thermo, err := device.New(device.KindThermostat, "Hallway Thermostat")
	if err != nil {
		t.Fatalf("device.New() error = %v", err)
	}
	thermo.SetPolicy(climate.Eco{})

	var applied []climate.Effect
	thermo.Attach(policySpy{effects: &applied})

	b := NewBroadcaster()
	b.Subscribe(thermo)
	b.Trigger(29)
	thermo.Toggle()

	if len(applied) != 1 {
		t.Fatalf("applied %d policies, want 1", len(applied))
	}
	if applied[0].Policy != climate.NameComfort || applied[0].Setpoint != 72 {
		t.Errorf("applied %+v, want comfort at 72", applied[0])
	}
}

type policySpy struct {
	effects *[]climate.Effect
}

func (policySpy) DeviceChanged(device.Event) {}

func (p policySpy) PolicyApplied(_ string, e climate.Effect) {
	*p.effects = append(*p.effects, e)
}
