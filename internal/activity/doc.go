// Package activity records what happens to devices.
//
// A Recorder is a device listener: every state change becomes an Entry in
// the bounded in-memory History and, when a Store is configured, a row in
// the SQLite activity_log table. Sensor readings are persisted the same way.
//
// Publisher and MetricsRecorder are further listeners that mirror the same
// events to MQTT (retained device state topics) and InfluxDB.
//
// All listeners run synchronously on the goroutine that changed the device.
// Store and network failures are logged and never reach the caller.
package activity
