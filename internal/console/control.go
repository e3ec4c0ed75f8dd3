package console

import (
	"context"
	"fmt"

	"github.com/nerrad567/homesim/internal/activity"
	"github.com/nerrad567/homesim/internal/device"
	"github.com/nerrad567/homesim/internal/schedule"
)

// DeviceView is a snapshot of one device.
type DeviceView struct {
	Name     string      `json:"name"`
	Kind     device.Kind `json:"kind"`
	On       bool        `json:"on"`
	State    string      `json:"state"`
	Policy   string      `json:"policy,omitempty"`
	Setpoint float64     `json:"setpoint,omitempty"`
}

// StatusView summarises the simulator.
type StatusView struct {
	Clock       int  `json:"clock"`
	Devices     int  `json:"devices"`
	Tasks       int  `json:"tasks"`
	Pending     int  `json:"pending"`
	Subscribers int  `json:"subscribers"`
	LastReading *int `json:"last_reading,omitempty"`
}

// TickView is the outcome of advancing the clock.
type TickView struct {
	Clock   int               `json:"clock"`
	Reports []schedule.Report `json:"reports"`
}

// The methods below are safe to call from any goroutine while Run is
// active. Each hands its work to the Run loop and waits for it. Changes
// they cause are recorded with the api source.

// Devices returns every device in registry order.
func (c *Console) Devices(ctx context.Context) ([]DeviceView, error) {
	var out []DeviceView
	err := c.do(ctx, func() {
		for _, d := range c.registry.List() {
			out = append(out, viewOf(d))
		}
	})
	return out, err
}

// Device returns the first device with the given name.
func (c *Console) Device(ctx context.Context, name string) (DeviceView, error) {
	var view DeviceView
	var lookupErr error
	err := c.do(ctx, func() {
		d, ok := c.registry.Lookup(name)
		if !ok {
			lookupErr = fmt.Errorf("%w: %q", device.ErrDeviceNotFound, name)
			return
		}
		view = viewOf(d)
	})
	return view, firstErr(err, lookupErr)
}

// Toggle flips the named device.
func (c *Console) Toggle(ctx context.Context, name string) (DeviceView, error) {
	var view DeviceView
	var opErr error
	err := c.do(ctx, func() {
		c.withSource(activity.SourceAPI, func() {
			var d *device.Device
			d, opErr = c.registry.Toggle(name)
			if opErr == nil {
				view = viewOf(d)
			}
		})
	})
	return view, firstErr(err, opErr)
}

// SetState drives the named device to on. changed reports whether a
// transition happened.
func (c *Console) SetState(ctx context.Context, name string, on bool) (view DeviceView, changed bool, err error) {
	var opErr error
	doErr := c.do(ctx, func() {
		d, ok := c.registry.Lookup(name)
		if !ok {
			opErr = fmt.Errorf("%w: %q", device.ErrDeviceNotFound, name)
			return
		}
		c.withSource(activity.SourceAPI, func() {
			changed = d.SetState(on)
		})
		view = viewOf(d)
	})
	return view, changed, firstErr(doErr, opErr)
}

// CreateDevice adds a device of the named type.
func (c *Console) CreateDevice(ctx context.Context, typeName, name string) (DeviceView, error) {
	var view DeviceView
	var opErr error
	err := c.do(ctx, func() {
		kind, err := device.ParseKind(typeName)
		if err != nil {
			opErr = err
			return
		}
		d, err := c.AddDevice(kind, name)
		if err != nil {
			opErr = err
			return
		}
		view = viewOf(d)
	})
	return view, firstErr(err, opErr)
}

// Sensor broadcasts a reading.
func (c *Console) Sensor(ctx context.Context, value int) error {
	return c.do(ctx, func() {
		c.broadcast(value)
	})
}

// Schedule adds a task and returns its ID.
func (c *Console) Schedule(ctx context.Context, name string, on bool, keyword string, seconds int) (string, error) {
	var id string
	var opErr error
	err := c.do(ctx, func() {
		id, opErr = c.schedule(name, on, keyword, seconds)
	})
	return id, firstErr(err, opErr)
}

// Tasks returns a snapshot of the scheduled tasks.
func (c *Console) Tasks(ctx context.Context) ([]schedule.TaskInfo, error) {
	var tasks []schedule.TaskInfo
	err := c.do(ctx, func() {
		tasks = c.scheduler.Tasks()
	})
	return tasks, err
}

// ClearTasks drops every task and rewinds the clock, like reset.
func (c *Console) ClearTasks(ctx context.Context) (int, error) {
	var n int
	err := c.do(ctx, func() {
		n = c.reset()
	})
	return n, err
}

// Tick advances the clock n seconds.
func (c *Console) Tick(ctx context.Context, n int) (TickView, error) {
	if n < 1 || n > maxTicks {
		return TickView{}, usage(usageTick)
	}
	var view TickView
	err := c.do(ctx, func() {
		view.Reports = c.advance(n)
		view.Clock = c.clock
	})
	return view, err
}

// Status returns the simulator summary.
func (c *Console) Status(ctx context.Context) (StatusView, error) {
	var s StatusView
	err := c.do(ctx, func() {
		s = c.status()
	})
	return s, err
}

// Logs returns up to n activity entries, newest last.
func (c *Console) Logs(ctx context.Context, n int) ([]activity.Entry, error) {
	var entries []activity.Entry
	err := c.do(ctx, func() {
		entries = c.recorder.Recent(ctx, n)
	})
	return entries, err
}

// DeviceLogs returns up to n activity entries for the named device,
// newest last.
func (c *Console) DeviceLogs(ctx context.Context, name string, n int) ([]activity.Entry, error) {
	var entries []activity.Entry
	var lookupErr error
	err := c.do(ctx, func() {
		d, ok := c.registry.Lookup(name)
		if !ok {
			lookupErr = fmt.Errorf("%w: %q", device.ErrDeviceNotFound, name)
			return
		}
		entries = c.recorder.ForDevice(ctx, d.Name(), n)
	})
	return entries, firstErr(err, lookupErr)
}

// Readings returns up to n sensor readings, newest last.
func (c *Console) Readings(ctx context.Context, n int) ([]activity.Reading, error) {
	var readings []activity.Reading
	err := c.do(ctx, func() {
		readings = c.recorder.Readings(ctx, n)
	})
	return readings, err
}

func (c *Console) status() StatusView {
	s := StatusView{
		Clock:       c.clock,
		Devices:     c.registry.Len(),
		Tasks:       c.scheduler.Len(),
		Pending:     c.scheduler.Pending(),
		Subscribers: c.broadcaster.Subscribers(),
	}
	if v, ok := c.broadcaster.Last(); ok {
		s.LastReading = &v
	}
	return s
}

// do runs fn on the Run goroutine and waits for it to finish.
func (c *Console) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	req := func() {
		defer close(done)
		fn()
	}

	select {
	case c.requests <- req:
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Run executes requests synchronously; once handed over, fn is running.
	<-done
	return nil
}

func viewOf(d *device.Device) DeviceView {
	v := DeviceView{
		Name:  d.Name(),
		Kind:  d.Kind(),
		On:    d.State(),
		State: device.StateLabel(d.State()),
	}
	if p := d.Policy(); p != nil {
		v.Policy = p.Name()
		v.Setpoint = p.Setpoint()
	}
	return v
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
