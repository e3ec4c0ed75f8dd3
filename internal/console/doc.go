// Package console is the interactive front end of the simulator.
//
// It owns the simulated clock, parses one command per line and renders the
// results as text. Run is the only goroutine that touches the device
// registry, the scheduler and the sensor broadcaster. Readings from MQTT
// and requests from the HTTP API are handed to that goroutine over
// channels, so the core itself needs no locks.
//
// # Commands
//
//	<device name>            toggle the device
//	toggle <name>            toggle the device
//	add <type> <name>        create a Light, Fan or Thermostat
//	sensor <value>           broadcast a reading to every device
//	schedule <name> <on|off> <one-time|periodic|delayed> <seconds>
//	tick [n]                 advance the clock n seconds (default 1)
//	reset                    clear all tasks and rewind the clock
//	list [tasks]             show devices or scheduled tasks
//	logs [device] [n]        show recent activity, optionally for one device
//	readings [n]             show recent sensor readings
//	status                   show clock, counts and the last reading
//	help                     show this list
//	exit, quit               leave
//
// Device names may contain spaces.
package console
