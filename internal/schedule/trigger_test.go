package schedule

import (
	"errors"
	"testing"
)

func TestPeriodicFiresOnMultiples(t *testing.T) {
	for _, interval := range []int{1, 2, 3, 7} {
		p, err := NewPeriodic(interval)
		if err != nil {
			t.Fatalf("NewPeriodic(%d) error = %v", interval, err)
		}
		for now := 0; now <= 50; now++ {
			want := now%interval == 0
			if got := p.ShouldTrigger(now); got != want {
				t.Errorf("Periodic(%d).ShouldTrigger(%d) = %v, want %v", interval, now, got, want)
			}
		}
		if p.Done() {
			t.Errorf("Periodic(%d).Done() = true, want false", interval)
		}
	}
}

func TestNewPeriodicRejectsNonPositive(t *testing.T) {
	for _, interval := range []int{0, -1, -10} {
		if _, err := NewPeriodic(interval); !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("NewPeriodic(%d) error = %v, want ErrInvalidInterval", interval, err)
		}
	}
}

func TestOneTimeFiresOnce(t *testing.T) {
	o := NewOneTime(5)

	if o.ShouldTrigger(4) {
		t.Error("fired before its tick")
	}
	if !o.ShouldTrigger(5) {
		t.Error("did not fire at its tick")
	}
	if o.ShouldTrigger(5) {
		t.Error("fired twice at the same tick")
	}
	if o.ShouldTrigger(6) {
		t.Error("fired after its tick")
	}
	if !o.Done() {
		t.Error("Done() = false, want true")
	}
}

func TestOneTimeMissedTickNeverFires(t *testing.T) {
	o := NewOneTime(5)
	for _, now := range []int{1, 2, 7, 9} {
		if o.ShouldTrigger(now) {
			t.Errorf("fired at %d", now)
		}
	}
}

func TestDelayedLatches(t *testing.T) {
	d := NewDelayed(4)

	if d.ShouldTrigger(3) {
		t.Error("fired before start")
	}
	if d.Done() {
		t.Error("Done() before firing")
	}
	if !d.ShouldTrigger(6) {
		t.Error("did not fire on first evaluation past start")
	}
	if !d.Done() {
		t.Error("Done() = false after firing")
	}
	for _, now := range []int{6, 7, 100} {
		if d.ShouldTrigger(now) {
			t.Errorf("fired again at %d", now)
		}
	}
}

func TestDelayedInstancesAreIndependent(t *testing.T) {
	a := NewDelayed(2)
	b := NewDelayed(2)

	a.ShouldTrigger(2)

	if !b.ShouldTrigger(2) {
		t.Error("latch leaked between instances")
	}
}

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		keyword string
		seconds int
		wantT   string
		wantErr error
	}{
		{"one-time", 5, "*schedule.OneTime", nil},
		{"Periodic", 3, "*schedule.Periodic", nil},
		{" delayed ", 2, "*schedule.Delayed", nil},
		{"periodic", 0, "", ErrInvalidInterval},
		{"weekly", 1, "", ErrUnknownTrigger},
		{"", 1, "", ErrUnknownTrigger},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got, err := ParseTrigger(tt.keyword, tt.seconds)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseTrigger() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTrigger() unexpected error: %v", err)
			}
			if typeName(got) != tt.wantT {
				t.Errorf("ParseTrigger() = %s, want %s", typeName(got), tt.wantT)
			}
		})
	}
}

func typeName(t Trigger) string {
	switch t.(type) {
	case *OneTime:
		return "*schedule.OneTime"
	case *Periodic:
		return "*schedule.Periodic"
	case *Delayed:
		return "*schedule.Delayed"
	default:
		return "unknown"
	}
}
