package config

import (
	"testing"
	"time"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"sunday", time.Sunday, true},
		{"Monday", time.Monday, true},
		{" SAT ", time.Saturday, true},
		{"wed", time.Wednesday, true},
		{"funday", time.Sunday, false},
		{"", time.Sunday, false},
	}
	for _, tt := range tests {
		got, ok := ParseWeekday(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("TEST_WEEK_START", "someday")
	t.Setenv("TEST_TIMEOUT", "soon")
	t.Setenv("TEST_FLAG", "yes please")

	if got := envWeekday("TEST_WEEK_START", time.Monday); got != time.Monday {
		t.Errorf("invalid weekday fell back to %v", got)
	}
	if got := envDuration("TEST_TIMEOUT", 5*time.Second); got != 5*time.Second {
		t.Errorf("invalid duration fell back to %v", got)
	}
	if got := envBool("TEST_FLAG", true); !got {
		t.Error("invalid bool did not fall back to default")
	}
}

func TestLocation(t *testing.T) {
	loc, err := (&Config{Timezone: "Local"}).Location()
	if err != nil || loc != time.Local {
		t.Fatalf("Local: %v %v", loc, err)
	}
	if _, err := (&Config{Timezone: "Mars/Olympus"}).Location(); err == nil {
		t.Fatal("unknown zone accepted")
	}
}
