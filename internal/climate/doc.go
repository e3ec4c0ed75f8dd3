// Package climate provides the temperature policies a thermostat can hold.
//
// A Policy is a stateless description of a setpoint regime. Thermostats hold
// at most one policy at a time and replace it whenever a sensor reading or an
// explicit assignment selects a different one.
//
// # Key Types
//
//   - Policy: the regime interface (name, setpoint, observable effect)
//   - Eco: energy-saving regime (68°F)
//   - Comfort: comfort regime (72°F)
//   - Effect: the description produced when a policy is applied
//
// # Usage
//
//	p := climate.ForReading(29) // Comfort
//	effect := p.Apply()
//	fmt.Println(effect.Message) // "Comfort Mode: Set to 72°F for comfort."
//
// New regimes only need to implement Policy; nothing else in the system
// inspects the concrete type.
package climate
