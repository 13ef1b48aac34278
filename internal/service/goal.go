package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/period"
	"github.com/fitfuel/fitfuel/internal/repository"
	"github.com/fitfuel/fitfuel/internal/validation"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type refreshOutcome int

const (
	outcomeUnchanged refreshOutcome = iota
	outcomeRefreshed
	outcomeReset
	outcomeSkipped
)

// GoalService owns the goal lifecycle and the reset routine. Current values
// are only ever written here, always from the aggregator.
type GoalService struct {
	repo       repository.GoalRepository
	aggregator *ProgressAggregator
	periods    period.Calculator
	clock      clockwork.Clock
	events     Events
}

func NewGoalService(
	repo repository.GoalRepository,
	aggregator *ProgressAggregator,
	periods period.Calculator,
	clock clockwork.Clock,
	events Events,
) *GoalService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if events == nil {
		events = noEvents{}
	}
	return &GoalService{
		repo:       repo,
		aggregator: aggregator,
		periods:    periods,
		clock:      clock,
		events:     events,
	}
}

// RefreshAll resets goals whose period has ended and soft-refreshes the
// rest. A goal that fails to aggregate is left untouched; the others are
// still processed and the failures are returned joined.
func (s *GoalService) RefreshAll(ctx context.Context, ownerID string) (*model.RefreshResult, error) {
	return s.refresh(ctx, ownerID, false)
}

// ForceResetAll re-anchors every active goal to its current period.
func (s *GoalService) ForceResetAll(ctx context.Context, ownerID string) (*model.RefreshResult, error) {
	return s.refresh(ctx, ownerID, true)
}

func (s *GoalService) refresh(ctx context.Context, ownerID string, force bool) (*model.RefreshResult, error) {
	now := s.clock.Now()
	result := &model.RefreshResult{OwnerID: ownerID, RefreshedAt: now.UTC()}

	goals, err := s.repo.Active(ctx, ownerID)
	if err != nil {
		return result, fmt.Errorf("failed to load active goals: %w", err)
	}

	var errs []error
	for _, goal := range goals {
		outcome, err := s.refreshGoal(ctx, goal, now, force)
		if err != nil {
			result.Failed++
			errs = append(errs, err)
			slog.Warn("goal refresh failed", "error", err, "user_id", ownerID, "goal_id", goal.ID, "goal_type", goal.GoalType)
			continue
		}
		switch outcome {
		case outcomeReset:
			result.Reset++
		case outcomeRefreshed:
			result.Refreshed++
		case outcomeSkipped:
			result.Skipped++
		default:
			result.Unchanged++
		}
	}

	if result.Changed() {
		s.events.GoalsRefreshed(ownerID, *result)
	}

	if result.Reset > 0 || force {
		slog.Info("goals refreshed", "user_id", ownerID, "force", force, "reset", result.Reset,
			"refreshed", result.Refreshed, "skipped", result.Skipped, "failed", result.Failed)
	}

	return result, errors.Join(errs...)
}

func (s *GoalService) refreshGoal(ctx context.Context, goal *model.Goal, now time.Time, force bool) (refreshOutcome, error) {
	stale, err := s.periods.IsStale(goal.GoalType, goal.LastResetAt, now)
	if err != nil {
		return outcomeUnchanged, &AggregationError{GoalID: goal.ID, GoalType: goal.GoalType, Err: err}
	}

	start, _ := s.periods.PeriodStart(goal.GoalType, now)
	reset := force || stale

	value, err := s.aggregator.Aggregate(ctx, goal.OwnerID, goal.GoalType, start)
	if err != nil {
		return outcomeUnchanged, &AggregationError{GoalID: goal.ID, GoalType: goal.GoalType, Err: err}
	}

	anchor := start
	if !reset {
		anchor = *goal.LastResetAt
		if value == goal.CurrentValue {
			return outcomeUnchanged, nil
		}
	}

	wasReached := goal.Reached()
	err = s.repo.UpdateProgress(ctx, goal, value, anchor)
	if errors.Is(err, repository.ErrConcurrentModification) {
		// Another refresh won; its write is equally valid.
		slog.Debug("goal refresh lost race", "goal_id", goal.ID, "user_id", goal.OwnerID)
		return outcomeSkipped, nil
	}
	if err != nil {
		return outcomeUnchanged, fmt.Errorf("failed to update goal %s: %w", goal.ID, err)
	}

	// a forced reset inside the same period is not a new crossing
	if goal.Reached() && (stale || !wasReached) {
		s.events.GoalReached(ctx, goal)
	}

	if reset {
		return outcomeReset, nil
	}
	return outcomeRefreshed, nil
}

// Create replaces any active goal of the same type. The unit always comes
// from the goal type table; a caller-supplied unit is informational.
func (s *GoalService) Create(ctx context.Context, ownerID string, goalType model.GoalType, target float64, unit string) (*model.Goal, error) {
	spec, ok := goalType.Spec()
	if !ok {
		return nil, &ValidationError{Field: "goal_type", Message: fmt.Sprintf("unknown goal type %q", goalType)}
	}
	if err := validation.ValidateGoalTarget(target); err != nil {
		return nil, &ValidationError{Field: "target_value", Message: err.Error()}
	}
	if unit != "" && !strings.EqualFold(unit, spec.Unit) {
		slog.Debug("ignoring goal unit from caller", "goal_type", goalType, "unit", unit, "want", spec.Unit)
	}

	now := s.clock.Now()
	start := s.periods.Start(spec.Window, now)

	value, err := s.aggregator.Aggregate(ctx, ownerID, goalType, start)
	if err != nil {
		return nil, &AggregationError{GoalType: goalType, Err: err}
	}

	goal := &model.Goal{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		GoalType:     goalType,
		TargetValue:  target,
		CurrentValue: value,
		Unit:         spec.Unit,
		IsActive:     true,
		LastResetAt:  &start,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.repo.Create(ctx, goal)
	if errors.Is(err, repository.ErrActiveGoalExists) {
		// A concurrent create slipped in between our deactivate and insert.
		err = s.repo.Create(ctx, goal)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	slog.Info("goal created", "user_id", ownerID, "goal_id", goal.ID, "goal_type", goalType, "target", target)
	s.events.GoalsRefreshed(ownerID, model.RefreshResult{OwnerID: ownerID, Refreshed: 1, RefreshedAt: now.UTC()})
	if goal.Reached() {
		s.events.GoalReached(ctx, goal)
	}
	return goal, nil
}

// CreateFromSuggestion accepts the recommendation payload {type, target, unit}.
func (s *GoalService) CreateFromSuggestion(ctx context.Context, ownerID string, suggestion model.Suggestion) (*model.Goal, error) {
	goalType := model.GoalType(strings.ToLower(strings.TrimSpace(suggestion.Type)))
	return s.Create(ctx, ownerID, goalType, suggestion.Target, suggestion.Unit)
}

func (s *GoalService) Delete(ctx context.Context, ownerID, goalID string) error {
	err := s.repo.Delete(ctx, ownerID, goalID)
	if err != nil {
		return err
	}
	slog.Info("goal deleted", "user_id", ownerID, "goal_id", goalID)
	s.events.GoalsRefreshed(ownerID, model.RefreshResult{OwnerID: ownerID, Refreshed: 1, RefreshedAt: s.clock.Now().UTC()})
	return nil
}

// List refreshes first, then returns the active goals with percentages.
// When the refresh fails the last stored values are still returned, the
// failure is logged, and RefreshError carries ErrRefreshFailed. Only a
// failure to read the goals themselves is returned as an error.
func (s *GoalService) List(ctx context.Context, ownerID string) (*model.GoalList, error) {
	result, refreshErr := s.RefreshAll(ctx, ownerID)

	goals, err := s.repo.Active(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	list := &model.GoalList{
		Goals:       make([]model.GoalProgress, 0, len(goals)),
		RefreshedAt: result.RefreshedAt,
	}
	for _, goal := range goals {
		list.Goals = append(list.Goals, model.NewGoalProgress(goal))
	}
	if refreshErr != nil {
		slog.Warn("listing goals with last known values", "error", refreshErr, "user_id", ownerID)
		list.RefreshError = ErrRefreshFailed.Error()
	}
	return list, nil
}

// SeedDefaults creates the default goals for a new account.
func (s *GoalService) SeedDefaults(ctx context.Context, ownerID string) error {
	var errs []error
	for _, tmpl := range model.DefaultGoals() {
		_, err := s.Create(ctx, ownerID, tmpl.GoalType, tmpl.TargetValue, tmpl.Unit)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tmpl.GoalType, err))
		}
	}
	return errors.Join(errs...)
}
