package service

import (
	"context"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
)

// Events receives notifications from the goal and activity services.
// Implementations must not block the caller.
type Events interface {
	ActivityLogged(ownerID, kind string, at time.Time)
	GoalsRefreshed(ownerID string, result model.RefreshResult)
	GoalReached(ctx context.Context, goal *model.Goal)
}

// EventFanout delivers every event to each of its members in order.
type EventFanout []Events

func (f EventFanout) ActivityLogged(ownerID, kind string, at time.Time) {
	for _, e := range f {
		e.ActivityLogged(ownerID, kind, at)
	}
}

func (f EventFanout) GoalsRefreshed(ownerID string, result model.RefreshResult) {
	for _, e := range f {
		e.GoalsRefreshed(ownerID, result)
	}
}

func (f EventFanout) GoalReached(ctx context.Context, goal *model.Goal) {
	for _, e := range f {
		e.GoalReached(ctx, goal)
	}
}

type noEvents struct{}

func (noEvents) ActivityLogged(string, string, time.Time) {}
func (noEvents) GoalsRefreshed(string, model.RefreshResult) {}
func (noEvents) GoalReached(context.Context, *model.Goal) {}
