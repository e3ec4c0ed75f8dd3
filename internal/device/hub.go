package device

import "github.com/nerrad567/homesim/internal/climate"

// Event describes a device state change.
type Event struct {
	Device string `json:"device"`
	Kind   Kind   `json:"kind"`
	On     bool   `json:"on"`
}

// Listener receives state-change notifications from the devices it is
// attached to. A single listener may be attached to many devices.
//
// Listeners are called synchronously on the goroutine that mutated the
// device and must not block.
type Listener interface {
	DeviceChanged(e Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(e Event)

// DeviceChanged implements Listener.
func (f ListenerFunc) DeviceChanged(e Event) {
	f(e)
}

// PolicyListener is an optional extension of Listener. Listeners that
// implement it are also told when a thermostat applies its climate policy.
type PolicyListener interface {
	PolicyApplied(device string, effect climate.Effect)
}

// hub is the per-device notification list. It is append-only: listeners are
// referenced, never owned, and stay attached for the device's lifetime.
type hub struct {
	listeners []Listener
}

func (h *hub) attach(l Listener) {
	h.listeners = append(h.listeners, l)
}

func (h *hub) notify(e Event) {
	for _, l := range h.listeners {
		l.DeviceChanged(e)
	}
}

func (h *hub) notifyPolicy(device string, effect climate.Effect) {
	for _, l := range h.listeners {
		if pl, ok := l.(PolicyListener); ok {
			pl.PolicyApplied(device, effect)
		}
	}
}
