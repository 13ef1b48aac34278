package period

import (
	"testing"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("timezone %s unavailable: %v", name, err)
	}
	return loc
}

func TestStartDaily(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	c := New(loc, time.Sunday)

	now := time.Date(2026, 10, 14, 10, 30, 0, 0, loc) // Wednesday
	got := c.Start(model.WindowDay, now)
	want := time.Date(2026, 10, 14, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// 02:00 UTC on the 15th is still the 14th in New York
	utc := time.Date(2026, 10, 15, 2, 0, 0, 0, time.UTC)
	got = c.Start(model.WindowDay, utc)
	if !got.Equal(want) {
		t.Fatalf("expected local day start %v, got %v", want, got)
	}
}

func TestStartWeekly(t *testing.T) {
	c := New(time.UTC, time.Sunday)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"wednesday", time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC), time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC)},
		{"sunday midnight", time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC)},
		{"saturday night", time.Date(2026, 10, 17, 23, 59, 59, 0, time.UTC), time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC)},
		{"across month", time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC), time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Start(model.WindowWeek, tt.now)
			if !got.Equal(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStartWeeklyMondayStart(t *testing.T) {
	c := New(time.UTC, time.Monday)

	got := c.Start(model.WindowWeek, time.Date(2026, 10, 11, 12, 0, 0, 0, time.UTC)) // Sunday
	want := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWindowAcrossDST(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	c := New(loc, time.Sunday)

	// DST ends on 2026-11-01 in New York: that day has 25 hours
	start, end := c.Window(model.WindowDay, time.Date(2026, 11, 1, 12, 0, 0, 0, loc))
	if got := end.Sub(start); got != 25*time.Hour {
		t.Fatalf("expected 25h day, got %v", got)
	}
	if end.In(loc).Hour() != 0 {
		t.Fatalf("expected window end at local midnight, got %v", end)
	}
}

func TestIsStale(t *testing.T) {
	c := New(time.UTC, time.Sunday)
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

	yesterday := time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	tenDaysAgo := now.AddDate(0, 0, -10)
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		goalType  model.GoalType
		lastReset *time.Time
		want      bool
	}{
		{"never reset", model.GoalDailyCalories, nil, true},
		{"daily reset yesterday", model.GoalDailyCalories, &yesterday, true},
		{"daily reset today", model.GoalDailyProtein, &today, false},
		{"weekly reset ten days ago", model.GoalWeeklyWorkouts, &tenDaysAgo, true},
		{"weekly reset this week", model.GoalWeeklyWorkouts, &monday, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.IsStale(tt.goalType, tt.lastReset, now)
			if err != nil {
				t.Fatalf("IsStale: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected stale=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsStaleUnknownType(t *testing.T) {
	c := New(time.UTC, time.Sunday)
	if _, err := c.IsStale("daily_water", nil, time.Now()); err == nil {
		t.Fatal("expected error for unknown goal type")
	}
}
