package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/period"
	"github.com/fitfuel/fitfuel/internal/repository"
)

// ProgressAggregator computes a goal's current value from the activity log.
// It only reads.
type ProgressAggregator struct {
	activity repository.ActivityRepository
	periods  period.Calculator
	timeout  time.Duration
}

func NewProgressAggregator(activity repository.ActivityRepository, periods period.Calculator, timeout time.Duration) *ProgressAggregator {
	return &ProgressAggregator{
		activity: activity,
		periods:  periods,
		timeout:  timeout,
	}
}

// Aggregate sums the goal type's metric over the period that begins at
// periodStart. Entries are matched on event time.
func (a *ProgressAggregator) Aggregate(ctx context.Context, ownerID string, goalType model.GoalType, periodStart time.Time) (float64, error) {
	spec, ok := goalType.Spec()
	if !ok {
		return 0, fmt.Errorf("unknown goal type %q", goalType)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := periodStart
	end := a.periods.Next(spec.Window, start)

	switch {
	case spec.Metric.Source() == "nutrition":
		return a.activity.NutritionSum(ctx, ownerID, spec.Metric, start, end)
	case spec.Metric == model.MetricWorkouts:
		count, err := a.activity.FitnessCount(ctx, ownerID, start, end)
		return float64(count), err
	default:
		return a.activity.FitnessSum(ctx, ownerID, spec.Metric, start, end)
	}
}
