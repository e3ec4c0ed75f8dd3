// Package device provides the simulated devices and their registry.
//
// A Device is a named on/off entity of a fixed kind (Light, Fan or
// Thermostat). Every state change fans out synchronously to the listeners
// attached to the device, in attachment order, before the mutating call
// returns.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                       Registry                            │
//	│   ordered devices · factory · lookup by name              │
//	│                                                           │
//	│   ┌──────────────────────────┐                            │
//	│   │          Device          │   Toggle / SetState        │
//	│   │  name · kind · on        │──────────┐                 │
//	│   │  behaviour (per kind)    │          ▼                 │
//	│   │  hub (listeners)         │   DeviceChanged(Event)     │
//	│   └──────────────────────────┘   → activity log, MQTT,    │
//	│                                    InfluxDB, console      │
//	└──────────────────────────────────────────────────────────┘
//
// # State Contract
//
//   - Toggle flips the state and always notifies.
//   - SetState transitions and notifies only when the requested state differs.
//   - ReactToSensor dispatches on the device kind: lights only log, fans switch
//     on above the comfort threshold, thermostats swap their climate policy
//     without touching the on/off state.
//   - A thermostat toggled into ON applies its held policy; toggling OFF does not.
//
// # Thread Safety
//
// Devices and the Registry are not safe for concurrent use. They are owned by
// the single console loop; feeds running on other goroutines hand their data
// to that loop through channels.
package device
