package activity

import (
	"encoding/json"
	"time"

	"github.com/nerrad567/homesim/internal/climate"
	"github.com/nerrad567/homesim/internal/device"
	"github.com/nerrad567/homesim/internal/infrastructure/mqtt"
)

// MessagePublisher is the part of the MQTT client the publisher needs.
type MessagePublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// StatePayload is published retained on homesim/device/{name}/state.
type StatePayload struct {
	Device    string      `json:"device"`
	Kind      device.Kind `json:"kind"`
	On        bool        `json:"on"`
	State     string      `json:"state"`
	Timestamp time.Time   `json:"timestamp"`
}

// PolicyPayload is published on homesim/device/{name}/policy.
type PolicyPayload struct {
	Device    string    `json:"device"`
	Policy    string    `json:"policy"`
	Setpoint  float64   `json:"setpoint"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher mirrors device state changes and policy applications to MQTT.
type Publisher struct {
	client MessagePublisher
	qos    byte
	now    func() time.Time
	logger Logger
}

// NewPublisher creates a publisher using the given QoS.
func NewPublisher(client MessagePublisher, qos byte) *Publisher {
	return &Publisher{
		client: client,
		qos:    qos,
		now:    time.Now,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for publish failures.
func (p *Publisher) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
}

// DeviceChanged implements device.Listener.
func (p *Publisher) DeviceChanged(e device.Event) {
	p.publish(mqtt.Topics{}.DeviceState(e.Device), StatePayload{
		Device:    e.Device,
		Kind:      e.Kind,
		On:        e.On,
		State:     device.StateLabel(e.On),
		Timestamp: p.now().UTC(),
	}, true)
}

// PolicyApplied implements device.PolicyListener.
func (p *Publisher) PolicyApplied(name string, effect climate.Effect) {
	p.publish(mqtt.Topics{}.ThermostatPolicy(name), PolicyPayload{
		Device:    name,
		Policy:    effect.Policy,
		Setpoint:  effect.Setpoint,
		Message:   effect.Message,
		Timestamp: p.now().UTC(),
	}, false)
}

func (p *Publisher) publish(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("encoding mqtt payload", "topic", topic, "error", err)
		return
	}
	if err := p.client.Publish(topic, payload, p.qos, retained); err != nil {
		p.logger.Warn("publishing device activity", "topic", topic, "error", err)
	}
}
