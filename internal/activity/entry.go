package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/homesim/internal/device"
)

// Sources identify what caused a state change.
const (
	SourceConsole  = "console"
	SourceSchedule = "schedule"
	SourceSensor   = "sensor"
	SourceAPI      = "api"
)

// Entry is one recorded device state change.
type Entry struct {
	ID     int64       `json:"id,omitempty"`
	Device string      `json:"device"`
	Kind   device.Kind `json:"kind"`
	On     bool        `json:"on"`
	Source string      `json:"source"`
	At     time.Time   `json:"at"`
}

// Line renders the entry the way the activity logger prints it.
func (e Entry) Line() string {
	return fmt.Sprintf("[Logger] %s %q is now %s", e.Kind, e.Device, device.StateLabel(e.On))
}

// Reading is one persisted sensor value.
type Reading struct {
	ID    int64     `json:"id"`
	Value int       `json:"value"`
	At    time.Time `json:"at"`
}

// Store persists activity. Implementations must be safe for concurrent use.
type Store interface {
	Record(ctx context.Context, e Entry) error
	RecordReading(ctx context.Context, value int, at time.Time) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	ForDevice(ctx context.Context, name string, limit int) ([]Entry, error)
	Readings(ctx context.Context, limit int) ([]Reading, error)
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
