package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/homesim/internal/activity"
	"github.com/nerrad567/homesim/internal/device"
	"github.com/nerrad567/homesim/internal/schedule"
)

const (
	defaultLogLines = 10

	// maxTicks bounds a single tick command.
	maxTicks = 100000
)

const (
	usageAdd      = "add <Light|Fan|Thermostat> <name>"
	usageToggle   = "toggle <name>"
	usageSensor   = "sensor <integer>"
	usageSchedule = "schedule <device> <on|off> <one-time|periodic|delayed> <seconds>"
	usageTick     = "tick [n]"
	usageLogs     = "logs [device] [n]"
	usageReadings = "readings [n]"
	usageList     = "list [tasks]"
)

const helpText = `Commands:
  <device name>            toggle the device
  ` + usageToggle + `            toggle the device
  ` + usageAdd + `  create a device
  ` + usageSensor + `         broadcast a sensor reading
  ` + usageSchedule + `
  ` + usageTick + `                 advance the clock
  reset                    clear all tasks and rewind the clock
  ` + usageList + `              show devices or tasks
  ` + usageLogs + `        show recent activity, optionally for one device
  ` + usageReadings + `             show recent sensor readings
  status                   show simulator status
  help                     show this help
  exit | quit              leave the simulator
`

// Execute runs one command line. It reports whether the user asked to
// quit. Errors are the user's to see; none of them end the session.
func (c *Console) Execute(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprint(c.out, helpText)
		return false, nil
	case "toggle":
		return false, c.cmdToggle(args)
	case "add":
		return false, c.cmdAdd(args)
	case "sensor":
		return false, c.cmdSensor(args)
	case "schedule":
		return false, c.cmdSchedule(args)
	case "tick":
		return false, c.cmdTick(args)
	case "reset":
		c.cmdReset()
		return false, nil
	case "list":
		return false, c.cmdList(args)
	case "logs":
		return false, c.cmdLogs(args)
	case "readings":
		return false, c.cmdReadings(args)
	case "status":
		c.cmdStatus()
		return false, nil
	default:
		// Anything else is taken as a device name.
		return false, c.cmdToggle(fields)
	}
}

func (c *Console) cmdToggle(args []string) error {
	if len(args) == 0 {
		return usage(usageToggle)
	}
	var err error
	c.withSource(activity.SourceConsole, func() {
		_, err = c.registry.Toggle(strings.Join(args, " "))
	})
	return err
}

func (c *Console) cmdAdd(args []string) error {
	if len(args) < 2 {
		return usage(usageAdd)
	}
	kind, err := device.ParseKind(args[0])
	if err != nil {
		return err
	}
	d, err := c.AddDevice(kind, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added %s\n", d)
	return nil
}

func (c *Console) cmdSensor(args []string) error {
	if len(args) != 1 {
		return usage(usageSensor)
	}
	value, err := strconv.Atoi(args[0])
	if err != nil {
		return usage(usageSensor)
	}
	c.broadcast(value)
	return nil
}

func (c *Console) cmdSchedule(args []string) error {
	// The name may contain spaces, so the fixed arguments are taken from
	// the end.
	if len(args) < 4 {
		return usage(usageSchedule)
	}
	n := len(args)
	name := strings.Join(args[:n-3], " ")

	on, err := parseOnOff(args[n-3])
	if err != nil {
		return err
	}
	seconds, err := strconv.Atoi(args[n-1])
	if err != nil {
		return usage(usageSchedule)
	}

	id, err := c.schedule(name, on, args[n-2], seconds)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Scheduled %s to turn %s (%s, task %s)\n",
		name, device.StateLabel(on), args[n-2], shortID(id))
	return nil
}

func (c *Console) schedule(name string, on bool, keyword string, seconds int) (string, error) {
	trigger, err := schedule.ParseTrigger(keyword, seconds)
	if err != nil {
		return "", err
	}
	if _, ok := c.registry.Lookup(name); !ok {
		c.logger.Warn("scheduling task for unknown device", "device", name)
	}
	return c.scheduler.AddTask(name, on, trigger), nil
}

func (c *Console) cmdTick(args []string) error {
	n := 1
	if len(args) > 1 {
		return usage(usageTick)
	}
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 || v > maxTicks {
			return usage(usageTick)
		}
		n = v
	}

	for _, r := range c.advance(n) {
		c.renderReport(r)
	}
	fmt.Fprintf(c.out, "Time: %ds\n", c.clock)
	return nil
}

func (c *Console) renderReport(r schedule.Report) {
	for _, a := range r.Applied {
		fmt.Fprintf(c.out, "%s turned %s at time %ds\n", a.Device, device.StateLabel(a.On), r.Time)
	}
	for _, name := range r.Unresolved {
		fmt.Fprintf(c.out, "Scheduled device %q not found at time %ds\n", name, r.Time)
	}
}

func (c *Console) cmdReset() {
	c.reset()
	fmt.Fprintln(c.out, "All scheduled tasks cleared")
}

func (c *Console) cmdList(args []string) error {
	switch {
	case len(args) == 0:
		c.renderDevices()
	case len(args) == 1 && strings.EqualFold(args[0], "tasks"):
		c.renderTasks()
	default:
		return usage(usageList)
	}
	return nil
}

func (c *Console) renderDevices() {
	devices := c.registry.List()
	if len(devices) == 0 {
		fmt.Fprintln(c.out, "No devices.")
		return
	}
	fmt.Fprintf(c.out, "Devices (%d):\n", len(devices))
	for i, d := range devices {
		line := fmt.Sprintf("  %d. %s", i+1, d)
		if p := d.Policy(); p != nil {
			line += fmt.Sprintf(" [%s %.0f°F]", p.Name(), p.Setpoint())
		}
		fmt.Fprintln(c.out, line)
	}
}

func (c *Console) renderTasks() {
	tasks := c.scheduler.Tasks()
	if len(tasks) == 0 {
		fmt.Fprintln(c.out, "No scheduled tasks.")
		return
	}
	fmt.Fprintf(c.out, "Tasks (%d):\n", len(tasks))
	for i, t := range tasks {
		status := "pending"
		if t.Completed {
			status = "done"
		}
		fmt.Fprintf(c.out, "  %d. %s -> %s, %s [%s, fired %d]\n",
			i+1, t.DeviceName, device.StateLabel(t.On), t.Trigger, status, t.Fired)
	}
}

func (c *Console) cmdLogs(args []string) error {
	name, n, err := parseLogArgs(args)
	if err != nil {
		return err
	}

	var entries []activity.Entry
	if name == "" {
		entries = c.recorder.Recent(context.Background(), n)
	} else {
		d, ok := c.registry.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q", device.ErrDeviceNotFound, name)
		}
		entries = c.recorder.ForDevice(context.Background(), d.Name(), n)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No activity yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(c.out, "%s %s (%s)\n", e.At.Local().Format("15:04:05"), e.Line(), e.Source)
	}
	return nil
}

// parseLogArgs splits "logs" arguments into an optional device name and a
// line count. A trailing integer is the count; the rest is the name.
func parseLogArgs(args []string) (name string, n int, err error) {
	n = defaultLogLines
	if len(args) == 0 {
		return "", n, nil
	}
	last := args[len(args)-1]
	if v, convErr := strconv.Atoi(last); convErr == nil {
		if v < 1 {
			return "", 0, usage(usageLogs)
		}
		n = v
		args = args[:len(args)-1]
	}
	return strings.Join(args, " "), n, nil
}

func (c *Console) cmdReadings(args []string) error {
	n := defaultLogLines
	if len(args) > 1 {
		return usage(usageReadings)
	}
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return usage(usageReadings)
		}
		n = v
	}

	readings := c.recorder.Readings(context.Background(), n)
	if len(readings) == 0 {
		fmt.Fprintln(c.out, "No sensor readings yet.")
		return nil
	}
	for _, r := range readings {
		fmt.Fprintf(c.out, "%s %d\n", r.At.Local().Format("15:04:05"), r.Value)
	}
	return nil
}

func (c *Console) cmdStatus() {
	s := c.status()
	last := "none"
	if s.LastReading != nil {
		last = strconv.Itoa(*s.LastReading)
	}
	fmt.Fprintf(c.out, "Time: %ds | Devices: %d | Tasks: %d (%d pending) | Last sensor reading: %s\n",
		s.Clock, s.Devices, s.Tasks, s.Pending, last)
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, usage(usageSchedule)
	}
}

func usage(u string) error {
	return fmt.Errorf("%w: %s", ErrUsage, u)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
