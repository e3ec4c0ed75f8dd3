package schedule

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nerrad567/homesim/internal/device"
)

// Logger defines the logging interface used by the Scheduler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DeviceLookup resolves a device by name. The scheduler only reads through
// it; device.Registry satisfies it.
type DeviceLookup interface {
	Lookup(name string) (*device.Device, bool)
}

// Task is a scheduled state change.
type Task struct {
	ID         string
	DeviceName string
	On         bool
	Trigger    Trigger
	Completed  bool

	// Fired counts how many times the task was applied to a device.
	Fired int

	// LastFiredAt is the tick of the most recent application, or -1.
	LastFiredAt int
}

// TaskInfo is a read-only view of a task.
type TaskInfo struct {
	ID          string `json:"id"`
	DeviceName  string `json:"device"`
	On          bool   `json:"on"`
	Trigger     string `json:"trigger"`
	Completed   bool   `json:"completed"`
	Fired       int    `json:"fired"`
	LastFiredAt int    `json:"last_fired_at"`
}

// Application records one task applied during an Update.
type Application struct {
	TaskID  string `json:"task_id"`
	Device  string `json:"device"`
	On      bool   `json:"on"`
	Changed bool   `json:"changed"`
}

// Report summarises one Update call.
type Report struct {
	Time int `json:"time"`

	// Applied lists the tasks that fired and resolved, in task order.
	Applied []Application `json:"applied,omitempty"`

	// Unresolved lists the device names of tasks that fired but whose
	// device could not be found. Those tasks stay pending.
	Unresolved []string `json:"unresolved,omitempty"`
}

// Changed returns the number of applications that changed a device state.
func (r Report) Changed() int {
	n := 0
	for _, a := range r.Applied {
		if a.Changed {
			n++
		}
	}
	return n
}

// Scheduler owns an ordered list of tasks and evaluates them against the
// simulated clock.
type Scheduler struct {
	tasks   []*Task
	devices DeviceLookup
	logger  Logger
}

// New creates a scheduler that resolves device names through devices.
func New(devices DeviceLookup) *Scheduler {
	return &Scheduler{
		devices: devices,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// AddTask appends a task and returns its ID. The device name is not checked;
// it is resolved each time the trigger fires.
func (s *Scheduler) AddTask(deviceName string, on bool, trigger Trigger) string {
	t := &Task{
		ID:          uuid.NewString(),
		DeviceName:  deviceName,
		On:          on,
		Trigger:     trigger,
		LastFiredAt: -1,
	}
	s.tasks = append(s.tasks, t)

	s.logger.Debug("task scheduled",
		"task_id", t.ID,
		"device", deviceName,
		"state", device.StateLabel(on),
		"trigger", describe(trigger),
	)
	return t.ID
}

// Update evaluates every pending task against now, in insertion order.
//
// A firing task whose device resolves is applied with SetState and marked
// completed if its trigger is done. A firing task whose device does not
// resolve is left pending and reported as unresolved. A latching trigger
// (OneTime, Delayed) is spent by that evaluation, so such a task never fires
// again; only Periodic tasks get another chance.
func (s *Scheduler) Update(now int) Report {
	report := Report{Time: now}

	for _, t := range s.tasks {
		if t.Completed {
			continue
		}
		if !t.Trigger.ShouldTrigger(now) {
			continue
		}

		d, ok := s.devices.Lookup(t.DeviceName)
		if !ok {
			s.logger.Warn("scheduled device not found", "task_id", t.ID, "device", t.DeviceName, "time", now)
			report.Unresolved = append(report.Unresolved, t.DeviceName)
			continue
		}

		changed := d.SetState(t.On)
		t.Fired++
		t.LastFiredAt = now
		t.Completed = t.Trigger.Done()

		s.logger.Info(fmt.Sprintf("%s turned %s at time %ds", t.DeviceName, device.StateLabel(t.On), now),
			"task_id", t.ID,
			"changed", changed,
			"completed", t.Completed,
		)
		report.Applied = append(report.Applied, Application{
			TaskID:  t.ID,
			Device:  t.DeviceName,
			On:      t.On,
			Changed: changed,
		})
	}

	return report
}

// ClearTasks removes every task and returns how many were removed.
func (s *Scheduler) ClearTasks() int {
	n := len(s.tasks)
	s.tasks = nil
	s.logger.Info("All scheduled tasks cleared", "count", n)
	return n
}

// Len returns the number of resident tasks, completed ones included.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Pending returns the number of tasks that have not completed.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// Tasks returns a snapshot of all tasks in insertion order.
func (s *Scheduler) Tasks() []TaskInfo {
	out := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, TaskInfo{
			ID:          t.ID,
			DeviceName:  t.DeviceName,
			On:          t.On,
			Trigger:     describe(t.Trigger),
			Completed:   t.Completed,
			Fired:       t.Fired,
			LastFiredAt: t.LastFiredAt,
		})
	}
	return out
}

func describe(t Trigger) string {
	if s, ok := t.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", t)
}
