package mqtt

import (
	"fmt"
	"net/url"
)

// Topic prefixes.
const (
	// TopicPrefix is the root of every simulator topic.
	TopicPrefix = "homesim"
)

// Topics provides builders for simulator MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.DeviceState("Bedroom Fan") // "homesim/device/Bedroom%20Fan/state"
type Topics struct{}

// DeviceState returns the retained state topic for a device. The name is
// path-escaped so spaces and wildcard characters cannot break the topic.
func (Topics) DeviceState(name string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefix, escapeLevel(name))
}

// ThermostatPolicy returns the topic on which policy applications are published.
func (Topics) ThermostatPolicy(name string) string {
	return fmt.Sprintf("%s/device/%s/policy", TopicPrefix, escapeLevel(name))
}

// Sensor returns the topic for an individual sensor's readings.
func (Topics) Sensor(sensorID string) string {
	return fmt.Sprintf("%s/sensor/%s", TopicPrefix, escapeLevel(sensorID))
}

// Status returns the simulator online/offline status topic.
func (Topics) Status() string {
	return TopicPrefix + "/system/status"
}

// AllDeviceStates matches every device state topic.
func (Topics) AllDeviceStates() string {
	return TopicPrefix + "/device/+/state"
}

// AllSensors matches every sensor topic.
func (Topics) AllSensors() string {
	return TopicPrefix + "/sensor/+"
}

// escapeLevel makes s safe to use as one topic level.
func escapeLevel(s string) string {
	return url.PathEscape(s)
}
