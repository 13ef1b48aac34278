// Package period computes goal period boundaries in a fixed location.
//
// The server's Calculator is authoritative for resets. Clients may build
// their own Calculator to decide when a refresh is worth requesting, but
// never to change progress values.
package period

import (
	"fmt"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
)

type Calculator struct {
	Location  *time.Location
	WeekStart time.Weekday
}

func New(loc *time.Location, weekStart time.Weekday) Calculator {
	if loc == nil {
		loc = time.Local
	}
	return Calculator{Location: loc, WeekStart: weekStart}
}

func (c Calculator) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Start returns local midnight of the period containing now.
func (c Calculator) Start(w model.Window, now time.Time) time.Time {
	local := now.In(c.loc())
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc())

	if w == model.WindowWeek {
		back := (int(local.Weekday()) - int(c.WeekStart) + 7) % 7
		return midnight.AddDate(0, 0, -back)
	}
	return midnight
}

// Next returns the start of the period following the one beginning at start.
// Calendar arithmetic keeps DST days at 23 or 25 hours.
func (c Calculator) Next(w model.Window, start time.Time) time.Time {
	local := start.In(c.loc())
	days := 1
	if w == model.WindowWeek {
		days = 7
	}
	return time.Date(local.Year(), local.Month(), local.Day()+days, 0, 0, 0, 0, c.loc())
}

// Window returns the half-open interval [start, end) containing now.
func (c Calculator) Window(w model.Window, now time.Time) (time.Time, time.Time) {
	start := c.Start(w, now)
	return start, c.Next(w, start)
}

func (c Calculator) PeriodStart(t model.GoalType, now time.Time) (time.Time, error) {
	spec, ok := t.Spec()
	if !ok {
		return time.Time{}, fmt.Errorf("unknown goal type %q", t)
	}
	return c.Start(spec.Window, now), nil
}

// IsStale reports whether lastResetAt belongs to a period that has ended.
// A goal that was never reset is always stale.
func (c Calculator) IsStale(t model.GoalType, lastResetAt *time.Time, now time.Time) (bool, error) {
	start, err := c.PeriodStart(t, now)
	if err != nil {
		return false, err
	}
	if lastResetAt == nil {
		return true, nil
	}
	return lastResetAt.Before(start), nil
}
