package device

import (
	"fmt"

	"github.com/nerrad567/homesim/internal/climate"
)

// Logger defines the logging interface used by devices and the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the ordered collection of simulated devices. It doubles as the
// device factory and as the name resolver handed to the scheduler.
//
// Names are not required to be unique. Lookup returns the first device with
// the given name in insertion order.
//
// The Registry is not safe for concurrent use.
type Registry struct {
	devices       []*Device
	defaultPolicy climate.Policy
	logger        Logger
}

// NewRegistry creates an empty registry. New thermostats receive the Eco
// policy unless SetDefaultPolicy says otherwise.
func NewRegistry() *Registry {
	return &Registry{
		defaultPolicy: climate.Eco{},
		logger:        noopLogger{},
	}
}

// SetLogger sets the logger for the registry and the devices it creates.
func (r *Registry) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// SetDefaultPolicy sets the policy given to thermostats created from now on.
// A nil policy leaves new thermostats without one.
func (r *Registry) SetDefaultPolicy(p climate.Policy) {
	r.defaultPolicy = p
}

// Create constructs a device of the given kind and adds it to the registry.
func (r *Registry) Create(kind Kind, name string) (*Device, error) {
	d, err := New(kind, name)
	if err != nil {
		return nil, err
	}
	d.SetLogger(r.logger)
	if r.defaultPolicy != nil {
		d.SetPolicy(r.defaultPolicy)
	}

	r.Add(d)
	return d, nil
}

// CreateFromType is Create with the kind given by its type name.
func (r *Registry) CreateFromType(typeName, name string) (*Device, error) {
	kind, err := ParseKind(typeName)
	if err != nil {
		return nil, err
	}
	return r.Create(kind, name)
}

// Add appends an existing device.
func (r *Registry) Add(d *Device) {
	r.devices = append(r.devices, d)
	r.logger.Info("device registered", "device", d.name, "kind", string(d.kind))
}

// Lookup returns the first device with the given name.
func (r *Registry) Lookup(name string) (*Device, bool) {
	for _, d := range r.devices {
		if d.name == name {
			return d, true
		}
	}
	return nil, false
}

// Toggle flips the named device.
// Returns ErrDeviceNotFound if no device has that name.
func (r *Registry) Toggle(name string) (*Device, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	d.Toggle()
	return d, nil
}

// List returns the devices in insertion order. The slice is a copy; the
// devices are shared.
func (r *Registry) List() []*Device {
	out := make([]*Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	return len(r.devices)
}
