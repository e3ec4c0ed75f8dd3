package schedule

import (
	"testing"

	"github.com/nerrad567/homesim/internal/device"
)

// counter counts state-change notifications.
type counter struct {
	events []device.Event
}

func (c *counter) DeviceChanged(e device.Event) {
	c.events = append(c.events, e)
}

func newFixture(t *testing.T) (*device.Registry, *Scheduler) {
	t.Helper()
	reg := device.NewRegistry()
	return reg, New(reg)
}

func mustPeriodic(t *testing.T, interval int) *Periodic {
	t.Helper()
	p, err := NewPeriodic(interval)
	if err != nil {
		t.Fatalf("NewPeriodic(%d) error = %v", interval, err)
	}
	return p
}

// Periodic(3) turning F1 ON fires at t=0 and t=3 only.
func TestUpdatePeriodicScenario(t *testing.T) {
	reg, s := newFixture(t)
	if _, err := reg.Create(device.KindFan, "F1"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	s.AddTask("F1", true, mustPeriodic(t, 3))

	var firedAt []int
	for now := 0; now <= 3; now++ {
		r := s.Update(now)
		if len(r.Applied) > 0 {
			firedAt = append(firedAt, now)
		}
	}

	if len(firedAt) != 2 || firedAt[0] != 0 || firedAt[1] != 3 {
		t.Errorf("fired at %v, want [0 3]", firedAt)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1 (periodic never completes)", s.Pending())
	}
}

// OneTime(5) turning F1 OFF applies once even when tick 5 is replayed.
func TestUpdateOneTimeScenario(t *testing.T) {
	reg, s := newFixture(t)
	fan, _ := reg.Create(device.KindFan, "F1")
	fan.SetState(true)
	c := &counter{}
	fan.Attach(c)

	s.AddTask("F1", false, NewOneTime(5))

	first := s.Update(5)
	if len(first.Applied) != 1 || !first.Applied[0].Changed {
		t.Fatalf("first Update(5) = %+v, want one changing application", first)
	}
	if tasks := s.Tasks(); !tasks[0].Completed {
		t.Error("task should be completed after the first application")
	}

	second := s.Update(5)
	if len(second.Applied) != 0 {
		t.Errorf("second Update(5) applied %d tasks, want 0", len(second.Applied))
	}
	if len(c.events) != 1 {
		t.Errorf("notifications = %d, want 1", len(c.events))
	}
	if fan.State() {
		t.Error("fan should be OFF")
	}
}

func TestUpdateDelayed(t *testing.T) {
	reg, s := newFixture(t)
	light, _ := reg.Create(device.KindLight, "L")
	s.AddTask("L", true, NewDelayed(3))

	for now := 0; now < 3; now++ {
		s.Update(now)
	}
	if light.State() {
		t.Fatal("light switched before the delay elapsed")
	}

	r := s.Update(4)
	if len(r.Applied) != 1 || !light.State() {
		t.Fatalf("Update(4) = %+v, want light ON", r)
	}

	light.SetState(false)
	s.Update(5)
	if light.State() {
		t.Error("delayed task fired twice")
	}
}

func TestUpdateInsertionOrderWins(t *testing.T) {
	reg, s := newFixture(t)
	fan, _ := reg.Create(device.KindFan, "F")
	c := &counter{}
	fan.Attach(c)

	s.AddTask("F", true, NewOneTime(1))
	s.AddTask("F", false, NewOneTime(1))

	r := s.Update(1)

	if len(r.Applied) != 2 {
		t.Fatalf("applied %d tasks, want 2", len(r.Applied))
	}
	if fan.State() {
		t.Error("last task in insertion order should win (OFF)")
	}
	if len(c.events) != 2 || !c.events[0].On || c.events[1].On {
		t.Errorf("events = %+v, want ON then OFF", c.events)
	}
}

func TestUpdateNoChangeStillCompletes(t *testing.T) {
	reg, s := newFixture(t)
	fan, _ := reg.Create(device.KindFan, "F")
	c := &counter{}
	fan.Attach(c)

	s.AddTask("F", false, NewOneTime(2))
	r := s.Update(2)

	if len(r.Applied) != 1 || r.Applied[0].Changed {
		t.Errorf("Update(2) = %+v, want one non-changing application", r)
	}
	if r.Changed() != 0 || len(c.events) != 0 {
		t.Error("no notification expected when the state already matches")
	}
	if !s.Tasks()[0].Completed {
		t.Error("task should complete even without a state change")
	}
}

func TestUpdateUnresolvedDeviceRetries(t *testing.T) {
	reg, s := newFixture(t)
	s.AddTask("Later Fan", true, mustPeriodic(t, 2))
	s.AddTask("Later Fan", true, NewOneTime(2))

	r := s.Update(2)
	if len(r.Applied) != 0 || len(r.Unresolved) != 2 {
		t.Fatalf("Update(2) = %+v, want two unresolved", r)
	}
	for _, ti := range s.Tasks() {
		if ti.Completed {
			t.Errorf("unresolved task %s marked completed", ti.Trigger)
		}
	}

	fan, _ := reg.Create(device.KindFan, "Later Fan")

	r = s.Update(4)
	if len(r.Applied) != 1 || !fan.State() {
		t.Errorf("Update(4) = %+v, want periodic task applied to the new device", r)
	}
}

// A delayed trigger latches on its first evaluation at or after Start even
// when the device is missing, so the task never applies and stays pending.
func TestUpdateUnresolvedDelayedIsSpent(t *testing.T) {
	reg, s := newFixture(t)
	s.AddTask("Late", true, NewDelayed(1))

	if r := s.Update(1); len(r.Unresolved) != 1 {
		t.Fatalf("Update(1) = %+v, want one unresolved", r)
	}

	fan, _ := reg.Create(device.KindFan, "Late")
	for now := 2; now <= 5; now++ {
		if r := s.Update(now); len(r.Applied) != 0 || len(r.Unresolved) != 0 {
			t.Errorf("Update(%d) = %+v, want nothing", now, r)
		}
	}

	if fan.State() {
		t.Error("fan turned on by a spent delayed trigger")
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}
}

// Replaying the tick of an unresolved one-time task does not fire it again.
func TestUpdateUnresolvedOneTimeReplay(t *testing.T) {
	reg, s := newFixture(t)
	s.AddTask("Late", true, NewOneTime(3))

	if r := s.Update(3); len(r.Unresolved) != 1 {
		t.Fatalf("Update(3) = %+v, want one unresolved", r)
	}

	fan, _ := reg.Create(device.KindFan, "Late")
	if r := s.Update(3); len(r.Applied) != 0 || len(r.Unresolved) != 0 {
		t.Errorf("replayed Update(3) = %+v, want nothing", r)
	}
	if fan.State() {
		t.Error("fan turned on by a replayed one-time trigger")
	}
	if tasks := s.Tasks(); tasks[0].Completed || tasks[0].Fired != 0 {
		t.Errorf("task = %+v, want pending and never fired", tasks[0])
	}
}

func TestClearTasks(t *testing.T) {
	reg, s := newFixture(t)
	fan, _ := reg.Create(device.KindFan, "F")
	c := &counter{}
	fan.Attach(c)

	s.AddTask("F", true, mustPeriodic(t, 1))
	s.AddTask("F", true, NewOneTime(3))
	s.AddTask("F", true, NewDelayed(0))

	if n := s.ClearTasks(); n != 3 {
		t.Errorf("ClearTasks() = %d, want 3", n)
	}
	for now := 0; now < 5; now++ {
		if r := s.Update(now); len(r.Applied) != 0 || len(r.Unresolved) != 0 {
			t.Errorf("Update(%d) after clear = %+v, want nothing", now, r)
		}
	}
	if len(c.events) != 0 || fan.State() {
		t.Error("no device mutation expected after ClearTasks")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestCompletedTasksStayResident(t *testing.T) {
	reg, s := newFixture(t)
	_, _ = reg.Create(device.KindLight, "L")
	s.AddTask("L", true, NewOneTime(1))

	s.Update(1)

	if s.Len() != 1 || s.Pending() != 0 {
		t.Errorf("Len() = %d, Pending() = %d; want 1, 0", s.Len(), s.Pending())
	}
	info := s.Tasks()[0]
	if info.Fired != 1 || info.LastFiredAt != 1 {
		t.Errorf("task info = %+v, want fired once at 1", info)
	}
}

func TestAddTaskIDsAreUnique(t *testing.T) {
	_, s := newFixture(t)
	a := s.AddTask("X", true, NewOneTime(1))
	b := s.AddTask("X", true, NewOneTime(1))
	if a == "" || a == b {
		t.Errorf("task IDs %q and %q should be distinct and non-empty", a, b)
	}
}
