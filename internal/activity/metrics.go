package activity

import (
	"github.com/nerrad567/homesim/internal/climate"
	"github.com/nerrad567/homesim/internal/device"
)

// MetricsWriter is the part of the InfluxDB client the recorder needs.
type MetricsWriter interface {
	WriteDeviceState(name, kind string, on bool)
	WriteSensorReading(value int)
	WritePolicy(name, policy string, setpoint float64)
}

// MetricsRecorder writes device state, sensor and policy points. Attach it
// to devices as a listener and subscribe it to the sensor broadcaster.
type MetricsRecorder struct {
	w MetricsWriter
}

// NewMetricsRecorder creates a recorder writing to w.
func NewMetricsRecorder(w MetricsWriter) *MetricsRecorder {
	return &MetricsRecorder{w: w}
}

// DeviceChanged implements device.Listener.
func (m *MetricsRecorder) DeviceChanged(e device.Event) {
	m.w.WriteDeviceState(e.Device, string(e.Kind), e.On)
}

// PolicyApplied implements device.PolicyListener.
func (m *MetricsRecorder) PolicyApplied(name string, effect climate.Effect) {
	m.w.WritePolicy(name, effect.Policy, effect.Setpoint)
}

// ReactToSensor implements sensor.Subscriber.
func (m *MetricsRecorder) ReactToSensor(value int) {
	m.w.WriteSensorReading(value)
}
