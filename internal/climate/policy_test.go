package climate

import (
	"errors"
	"strings"
	"testing"
)

func TestForReading(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  string
	}{
		{name: "well above threshold", value: 35, want: NameComfort},
		{name: "just above threshold", value: 29, want: NameComfort},
		{name: "at threshold", value: 28, want: NameEco},
		{name: "cold", value: 10, want: NameEco},
		{name: "negative", value: -5, want: NameEco},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForReading(tt.value)
			if got.Name() != tt.want {
				t.Errorf("ForReading(%d) = %q, want %q", tt.value, got.Name(), tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	eco := Eco{}.Apply()
	if eco.Policy != NameEco || eco.Setpoint != 68 {
		t.Errorf("Eco.Apply() = %+v", eco)
	}
	if !strings.Contains(eco.Message, "68°F") {
		t.Errorf("Eco message = %q, want setpoint in text", eco.Message)
	}

	comfort := Comfort{}.Apply()
	if comfort.Policy != NameComfort || comfort.Setpoint != 72 {
		t.Errorf("Comfort.Apply() = %+v", comfort)
	}
	if !strings.HasPrefix(comfort.Message, "Comfort Mode") {
		t.Errorf("Comfort message = %q", comfort.Message)
	}
}

func TestParse(t *testing.T) {
	for _, name := range []string{"eco", "ECO", " Comfort "} {
		if _, err := Parse(name); err != nil {
			t.Errorf("Parse(%q) error = %v", name, err)
		}
	}

	_, err := Parse("turbo")
	if !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("Parse(turbo) error = %v, want ErrUnknownPolicy", err)
	}
}
