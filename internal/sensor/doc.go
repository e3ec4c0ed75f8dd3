// Package sensor distributes environmental readings to devices.
//
// A Broadcaster holds an ordered list of subscribers and hands each reading
// to every one of them, synchronously and in subscription order. Readings
// that originate outside the process (an MQTT sensor topic) arrive through a
// Feed, which only queues them; the console loop drains the queue and calls
// Trigger itself so device code never runs on a network goroutine.
package sensor
