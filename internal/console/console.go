package console

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/nerrad567/homesim/internal/activity"
	"github.com/nerrad567/homesim/internal/climate"
	"github.com/nerrad567/homesim/internal/device"
	"github.com/nerrad567/homesim/internal/schedule"
	"github.com/nerrad567/homesim/internal/sensor"
)

// Prompt is printed before each command is read.
const Prompt = "> "

// Logger defines the logging interface used by the console.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Deps holds what the console drives. Registry, Scheduler, Broadcaster and
// Recorder are required.
type Deps struct {
	Registry    *device.Registry
	Scheduler   *schedule.Scheduler
	Broadcaster *sensor.Broadcaster
	Recorder    *activity.Recorder

	// Listeners are attached to every device after the console's own
	// printer and the recorder.
	Listeners []device.Listener

	// Out receives all rendered output. Defaults to io.Discard.
	Out io.Writer

	Logger Logger

	// ApplyPolicyOnSensor re-applies the policy of every running
	// thermostat after each sensor broadcast.
	ApplyPolicyOnSensor bool
}

// Console is the command interpreter and the owner of the simulated clock.
type Console struct {
	registry    *device.Registry
	scheduler   *schedule.Scheduler
	broadcaster *sensor.Broadcaster
	recorder    *activity.Recorder
	listeners   []device.Listener
	printer     *printer
	out         io.Writer
	logger      Logger

	applyPolicyOnSensor bool

	clock int

	requests chan func()
	stopped  chan struct{}

	// inputDone is closed when the goroutine reading input exits.
	inputDone chan struct{}
}

// New creates a console. The recorder is subscribed to the broadcaster so
// readings are persisted.
func New(deps Deps) *Console {
	out := deps.Out
	if out == nil {
		out = io.Discard
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	c := &Console{
		registry:            deps.Registry,
		scheduler:           deps.Scheduler,
		broadcaster:         deps.Broadcaster,
		recorder:            deps.Recorder,
		listeners:           deps.Listeners,
		printer:             &printer{out: out},
		out:                 out,
		logger:              logger,
		applyPolicyOnSensor: deps.ApplyPolicyOnSensor,
		requests:            make(chan func()),
		stopped:             make(chan struct{}),
		inputDone:           make(chan struct{}),
	}
	c.broadcaster.Subscribe(c.recorder)
	return c
}

// Clock returns the simulated time in seconds.
func (c *Console) Clock() int {
	return c.clock
}

// AddDevice creates a device, attaches the standard listeners and
// subscribes it to the sensor broadcaster.
func (c *Console) AddDevice(kind device.Kind, name string) (*device.Device, error) {
	d, err := c.registry.Create(kind, name)
	if err != nil {
		return nil, err
	}

	d.Attach(c.printer)
	d.Attach(c.recorder)
	for _, l := range c.listeners {
		d.Attach(l)
	}
	c.broadcaster.Subscribe(d)

	c.logger.Info("device added", "device", name, "kind", string(kind))
	return d, nil
}

// Run reads commands from in until EOF, exit or cancellation. Readings
// received on readings are broadcast as if typed with the sensor command.
// A nil readings channel is never selected.
func (c *Console) Run(ctx context.Context, in io.Reader, readings <-chan int) error {
	defer close(c.stopped)

	// The input goroutine may still be blocked handing over a line when
	// Run returns; cancelling releases it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(c.inputDone)
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	fmt.Fprint(c.out, Prompt)
	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
				default:
				}
				return nil
			}
			quit, err := c.Execute(line)
			if err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
			if quit {
				fmt.Fprintln(c.out, "Goodbye.")
				return nil
			}
			fmt.Fprint(c.out, Prompt)

		case value := <-readings:
			fmt.Fprintf(c.out, "\nSensor reading %d received\n", value)
			c.broadcast(value)
			fmt.Fprint(c.out, Prompt)

		case fn := <-c.requests:
			fn()
		}
	}
}

// broadcast delivers a reading to every subscriber and, if configured,
// re-applies running thermostats' policies.
func (c *Console) broadcast(value int) {
	c.withSource(activity.SourceSensor, func() {
		c.broadcaster.Trigger(value)
		if !c.applyPolicyOnSensor {
			return
		}
		for _, d := range c.registry.List() {
			if d.Kind() == device.KindThermostat && d.State() {
				d.ApplyPolicy()
			}
		}
	})
}

// advance moves the clock forward n seconds, updating the scheduler after
// each one.
func (c *Console) advance(n int) []schedule.Report {
	reports := make([]schedule.Report, 0, n)
	c.withSource(activity.SourceSchedule, func() {
		for range n {
			c.clock++
			reports = append(reports, c.scheduler.Update(c.clock))
		}
	})
	return reports
}

// reset drops every task and rewinds the clock.
func (c *Console) reset() int {
	n := c.scheduler.ClearTasks()
	c.clock = 0
	return n
}

// withSource runs fn with the recorder attributing changes to source.
func (c *Console) withSource(source string, fn func()) {
	prev := c.recorder.Source()
	c.recorder.SetSource(source)
	defer c.recorder.SetSource(prev)
	fn()
}

// printer renders device activity the way the simulator always has.
type printer struct {
	out io.Writer
}

// DeviceChanged implements device.Listener.
func (p *printer) DeviceChanged(e device.Event) {
	fmt.Fprintln(p.out, activity.Entry{Device: e.Device, Kind: e.Kind, On: e.On}.Line())
}

// PolicyApplied implements device.PolicyListener.
func (p *printer) PolicyApplied(_ string, effect climate.Effect) {
	fmt.Fprintf(p.out, "[Thermostat] %s\n", effect.Message)
}
