package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the simulator.
const (
	MeasurementDeviceState   = "device_state"
	MeasurementSensorReading = "sensor_reading"
	MeasurementPolicy        = "thermostat_policy"
)

// DeviceStatePoint builds a device_state point. The "on" field is 1 or 0
// so it can be graphed directly.
func DeviceStatePoint(name, kind string, on bool, at time.Time) *write.Point {
	state := 0
	if on {
		state = 1
	}
	return write.NewPoint(
		MeasurementDeviceState,
		map[string]string{
			"device": name,
			"kind":   kind,
		},
		map[string]interface{}{
			"on": state,
		},
		at,
	)
}

// SensorReadingPoint builds a sensor_reading point.
func SensorReadingPoint(value int, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementSensorReading,
		map[string]string{},
		map[string]interface{}{
			"value": value,
		},
		at,
	)
}

// PolicyPoint builds a thermostat_policy point recording which policy a
// thermostat applied and its setpoint in °F.
func PolicyPoint(name, policy string, setpoint float64, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementPolicy,
		map[string]string{
			"device": name,
			"policy": policy,
		},
		map[string]interface{}{
			"setpoint_f": setpoint,
		},
		at,
	)
}

// WriteDeviceState records a device on/off transition.
func (c *Client) WriteDeviceState(name, kind string, on bool) {
	c.writePoint(DeviceStatePoint(name, kind, on, time.Now()))
}

// WriteSensorReading records a broadcast sensor value.
func (c *Client) WriteSensorReading(value int) {
	c.writePoint(SensorReadingPoint(value, time.Now()))
}

// WritePolicy records a thermostat policy application.
func (c *Client) WritePolicy(name, policy string, setpoint float64) {
	c.writePoint(PolicyPoint(name, policy, setpoint, time.Now()))
}

// WritePoint writes a custom point timestamped now.
//
// Example:
//
//	client.WritePoint("console_stats",
//	    map[string]string{"site": "home-001"},
//	    map[string]interface{}{"tasks": 3, "clock": 42})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.writePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}
