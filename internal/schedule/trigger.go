package schedule

import (
	"fmt"
	"strings"
)

// Trigger decides whether a task fires at a given tick.
//
// ShouldTrigger may mutate the trigger (Delayed latches). Done reports whether
// the trigger will never fire again, and is consulted only after a firing has
// been applied to a device.
type Trigger interface {
	ShouldTrigger(now int) bool
	Done() bool
}

// Trigger keywords accepted by ParseTrigger.
const (
	KeywordOneTime  = "one-time"
	KeywordPeriodic = "periodic"
	KeywordDelayed  = "delayed"
)

// OneTime fires exactly when the clock equals At.
type OneTime struct {
	At    int
	fired bool
}

// NewOneTime creates a one-time trigger for the given tick.
func NewOneTime(at int) *OneTime {
	return &OneTime{At: at}
}

// ShouldTrigger implements Trigger.
func (t *OneTime) ShouldTrigger(now int) bool {
	if t.fired || now != t.At {
		return false
	}
	t.fired = true
	return true
}

// Done implements Trigger. A one-time task is finished as soon as it has
// been applied once.
func (t *OneTime) Done() bool { return true }

func (t *OneTime) String() string {
	return fmt.Sprintf("%s at %ds", KeywordOneTime, t.At)
}

// Periodic fires whenever the clock is a non-negative multiple of Interval.
type Periodic struct {
	Interval int
}

// NewPeriodic creates a periodic trigger.
// Returns ErrInvalidInterval if interval is not positive.
func NewPeriodic(interval int) (*Periodic, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInterval, interval)
	}
	return &Periodic{Interval: interval}, nil
}

// ShouldTrigger implements Trigger.
func (t *Periodic) ShouldTrigger(now int) bool {
	return t.Interval > 0 && now%t.Interval == 0
}

// Done implements Trigger. Periodic tasks never finish.
func (t *Periodic) Done() bool { return false }

func (t *Periodic) String() string {
	return fmt.Sprintf("%s every %ds", KeywordPeriodic, t.Interval)
}

// Delayed fires once, on the first evaluation at or after Start.
type Delayed struct {
	Start     int
	triggered bool
}

// NewDelayed creates a delayed trigger.
func NewDelayed(start int) *Delayed {
	return &Delayed{Start: start}
}

// ShouldTrigger implements Trigger.
func (t *Delayed) ShouldTrigger(now int) bool {
	if t.triggered || now < t.Start {
		return false
	}
	t.triggered = true
	return true
}

// Done implements Trigger.
func (t *Delayed) Done() bool { return t.triggered }

func (t *Delayed) String() string {
	return fmt.Sprintf("%s from %ds", KeywordDelayed, t.Start)
}

// ParseTrigger builds a trigger from its keyword and the seconds argument.
// Returns ErrUnknownTrigger for an unrecognised keyword.
func ParseTrigger(keyword string, seconds int) (Trigger, error) {
	switch strings.ToLower(strings.TrimSpace(keyword)) {
	case KeywordOneTime:
		return NewOneTime(seconds), nil
	case KeywordPeriodic:
		return NewPeriodic(seconds)
	case KeywordDelayed:
		return NewDelayed(seconds), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %s, %s, %s)",
			ErrUnknownTrigger, keyword, KeywordOneTime, KeywordPeriodic, KeywordDelayed)
	}
}
