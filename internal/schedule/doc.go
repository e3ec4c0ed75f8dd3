// Package schedule drives device state changes from a simulated clock.
//
// A Task pairs a device name and a desired state with a Trigger that decides,
// for each tick, whether the task fires. The Scheduler evaluates its tasks in
// insertion order on every Update call and resolves device names lazily
// through a DeviceLookup, so tasks may name devices that do not exist yet.
//
// # Triggers
//
//   - OneTime fires when the clock equals its instant, then is done.
//   - Periodic fires whenever the clock is a multiple of its interval
//     (including tick 0) and is never done.
//   - Delayed fires on the first evaluation at or after its start, then is done.
//
// # Usage
//
//	s := schedule.New(registry)
//	s.SetLogger(log)
//
//	p, _ := schedule.NewPeriodic(3)
//	s.AddTask("Bedroom Fan", true, p)
//
//	for now := 1; now <= 10; now++ {
//	    report := s.Update(now)
//	    // ...
//	}
//
// # Thread Safety
//
// The Scheduler is not safe for concurrent use. It is driven by the single
// console loop, like the devices it controls.
package schedule
