package sensor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nerrad567/homesim/internal/infrastructure/mqtt"
)

// feedBuffer is how many readings may wait for the console loop.
const feedBuffer = 16

// MessageSubscriber is the part of the MQTT client the feed needs.
type MessageSubscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Feed receives readings from an MQTT sensor topic and queues them for the
// console loop.
//
// Payloads are either a bare integer ("30") or a JSON object with a numeric
// "value" field ({"value": 30}).
//
// Thread Safety: the MQTT handler and Readings may be used from different
// goroutines.
type Feed struct {
	topic    string
	readings chan int
	logger   Logger
}

// NewFeed creates a feed for the given topic.
func NewFeed(topic string) *Feed {
	return &Feed{
		topic:    topic,
		readings: make(chan int, feedBuffer),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the feed.
func (f *Feed) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	f.logger = logger
}

// Topic returns the subscribed topic.
func (f *Feed) Topic() string {
	return f.topic
}

// Start subscribes to the sensor topic.
func (f *Feed) Start(client MessageSubscriber, qos byte) error {
	if err := client.Subscribe(f.topic, qos, f.handle); err != nil {
		return fmt.Errorf("subscribing to sensor topic %s: %w", f.topic, err)
	}
	f.logger.Info("sensor feed started", "topic", f.topic)
	return nil
}

// Readings returns the channel the console loop drains.
func (f *Feed) Readings() <-chan int {
	return f.readings
}

// Offer queues a reading without blocking.
// Returns ErrBacklogFull if the queue is full; the reading is dropped.
func (f *Feed) Offer(value int) error {
	select {
	case f.readings <- value:
		return nil
	default:
		return ErrBacklogFull
	}
}

func (f *Feed) handle(topic string, payload []byte) error {
	value, err := ParseReading(payload)
	if err != nil {
		f.logger.Warn("ignoring sensor payload", "topic", topic, "error", err)
		return err
	}
	if err := f.Offer(value); err != nil {
		f.logger.Warn("dropping sensor reading", "topic", topic, "value", value, "error", err)
		return err
	}
	return nil
}

type readingPayload struct {
	Value *int `json:"value"`
}

// ParseReading decodes a sensor payload.
// Returns ErrInvalidReading for anything other than an integer or
// {"value": <integer>}.
func ParseReading(payload []byte) (int, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("%w: empty payload", ErrInvalidReading)
	}

	if trimmed[0] == '{' {
		var p readingPayload
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidReading, err)
		}
		if p.Value == nil {
			return 0, fmt.Errorf("%w: missing value", ErrInvalidReading)
		}
		return *p.Value, nil
	}

	v, err := strconv.Atoi(string(trimmed))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidReading, trimmed)
	}
	return v, nil
}
