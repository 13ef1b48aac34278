package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/period"
	"github.com/fitfuel/fitfuel/internal/repository"
	"github.com/fitfuel/fitfuel/internal/storage"
	"github.com/fitfuel/fitfuel/internal/validation"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var ErrPhotosDisabled = errors.New("meal photo uploads are not configured")

// MealInput is a nutrition log request. ConsumedAt defaults to now.
type MealInput struct {
	Meal       string     `json:"meal"`
	Calories   float64    `json:"calories"`
	Protein    float64    `json:"protein"`
	Carbs      float64    `json:"carbs"`
	Fats       float64    `json:"fats"`
	ConsumedAt *time.Time `json:"consumed_at"`
}

// WorkoutInput is a fitness log request. PerformedAt defaults to now.
type WorkoutInput struct {
	Activity        string     `json:"activity"`
	DurationMinutes float64    `json:"duration_minutes"`
	CaloriesBurned  float64    `json:"calories_burned"`
	PerformedAt     *time.Time `json:"performed_at"`
}

// Photo is an uploaded meal image awaiting validation.
type Photo struct {
	Body io.Reader
	Size int64
}

type ActivityService struct {
	repo    repository.ActivityRepository
	photos  storage.PhotoStore
	periods period.Calculator
	clock   clockwork.Clock
	events  Events
}

func NewActivityService(
	repo repository.ActivityRepository,
	photos storage.PhotoStore,
	periods period.Calculator,
	clock clockwork.Clock,
	events Events,
) *ActivityService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if events == nil {
		events = noEvents{}
	}
	return &ActivityService{
		repo:    repo,
		photos:  photos,
		periods: periods,
		clock:   clock,
		events:  events,
	}
}

func (s *ActivityService) LogMeal(ctx context.Context, ownerID string, in MealInput, photo *Photo) (*model.NutritionEntry, error) {
	now := s.clock.Now()
	consumedAt := now
	if in.ConsumedAt != nil {
		consumedAt = *in.ConsumedAt
	}

	if err := validation.ValidateLabel("meal", in.Meal); err != nil {
		return nil, &ValidationError{Field: "meal", Message: err.Error()}
	}
	amounts := []struct {
		field string
		v     float64
	}{
		{"calories", in.Calories},
		{"protein", in.Protein},
		{"carbs", in.Carbs},
		{"fats", in.Fats},
	}
	for _, a := range amounts {
		if err := validation.ValidateAmount(a.field, a.v); err != nil {
			return nil, &ValidationError{Field: a.field, Message: err.Error()}
		}
	}
	if err := validation.ValidateEventTime(consumedAt, now); err != nil {
		return nil, &ValidationError{Field: "consumed_at", Message: err.Error()}
	}

	entry := &model.NutritionEntry{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		Meal:       strings.TrimSpace(in.Meal),
		Calories:   in.Calories,
		Protein:    in.Protein,
		Carbs:      in.Carbs,
		Fats:       in.Fats,
		ConsumedAt: consumedAt,
		CreatedAt:  now,
	}

	if photo != nil {
		key, err := s.savePhoto(ctx, ownerID, photo)
		if err != nil {
			return nil, err
		}
		entry.PhotoKey = &key
	}

	err := s.repo.CreateNutrition(ctx, entry)
	if err != nil {
		if entry.PhotoKey != nil {
			if delErr := s.photos.Delete(ctx, *entry.PhotoKey); delErr != nil {
				slog.Warn("failed to remove orphaned meal photo", "error", delErr, "key", *entry.PhotoKey)
			}
		}
		return nil, fmt.Errorf("failed to log meal: %w", err)
	}

	if entry.PhotoKey != nil {
		url, err := s.photos.URL(ctx, *entry.PhotoKey)
		if err != nil {
			slog.Warn("failed to presign meal photo", "error", err, "key", *entry.PhotoKey)
		}
		entry.PhotoURL = url
	}

	slog.Info("meal logged", "user_id", ownerID, "entry_id", entry.ID, "calories", entry.Calories)
	s.events.ActivityLogged(ownerID, "meal", consumedAt)
	return entry, nil
}

func (s *ActivityService) savePhoto(ctx context.Context, ownerID string, photo *Photo) (string, error) {
	if s.photos == nil {
		return "", ErrPhotosDisabled
	}
	contentType, ext, body, err := validation.SniffPhoto(photo.Body, photo.Size)
	if err != nil {
		return "", &ValidationError{Field: "photo", Message: err.Error()}
	}
	key := storage.PhotoKey(ownerID, ext)
	if err := s.photos.Put(ctx, key, body, contentType); err != nil {
		return "", fmt.Errorf("failed to store meal photo: %w", err)
	}
	return key, nil
}

func (s *ActivityService) LogWorkout(ctx context.Context, ownerID string, in WorkoutInput) (*model.FitnessEntry, error) {
	now := s.clock.Now()
	performedAt := now
	if in.PerformedAt != nil {
		performedAt = *in.PerformedAt
	}

	if err := validation.ValidateLabel("activity", in.Activity); err != nil {
		return nil, &ValidationError{Field: "activity", Message: err.Error()}
	}
	if err := validation.ValidateAmount("duration_minutes", in.DurationMinutes); err != nil {
		return nil, &ValidationError{Field: "duration_minutes", Message: err.Error()}
	}
	if err := validation.ValidateAmount("calories_burned", in.CaloriesBurned); err != nil {
		return nil, &ValidationError{Field: "calories_burned", Message: err.Error()}
	}
	if err := validation.ValidateEventTime(performedAt, now); err != nil {
		return nil, &ValidationError{Field: "performed_at", Message: err.Error()}
	}

	entry := &model.FitnessEntry{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Activity:        strings.TrimSpace(in.Activity),
		DurationMinutes: in.DurationMinutes,
		CaloriesBurned:  in.CaloriesBurned,
		PerformedAt:     performedAt,
		CreatedAt:       now,
	}

	if err := s.repo.CreateFitness(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log workout: %w", err)
	}

	slog.Info("workout logged", "user_id", ownerID, "entry_id", entry.ID, "activity", entry.Activity)
	s.events.ActivityLogged(ownerID, "workout", performedAt)
	return entry, nil
}

// WeeklySummary rolls up the seven local days ending today, shifted back by
// weeksBack whole weeks.
func (s *ActivityService) WeeklySummary(ctx context.Context, ownerID string, weeksBack int) (*model.WeeklySummary, error) {
	if weeksBack < 0 {
		return nil, &ValidationError{Field: "weeks_back", Message: "must not be negative"}
	}

	today := s.periods.Start(model.WindowDay, s.clock.Now())
	loc := today.Location()
	y, m, d := today.Date()
	from := time.Date(y, m, d-6-7*weeksBack, 0, 0, 0, 0, loc)
	to := time.Date(y, m, d+1-7*weeksBack, 0, 0, 0, 0, loc)

	meals, err := s.repo.NutritionEntries(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load nutrition entries: %w", err)
	}
	workouts, err := s.repo.FitnessEntries(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load fitness entries: %w", err)
	}

	summary := &model.WeeklySummary{From: from, To: to}
	days := make(map[string]*model.DayTotals, 7)
	for i := 0; i < 7; i++ {
		date := time.Date(y, m, d-6-7*weeksBack+i, 0, 0, 0, 0, loc).Format(time.DateOnly)
		summary.Days = append(summary.Days, model.DayTotals{Date: date})
	}
	for i := range summary.Days {
		days[summary.Days[i].Date] = &summary.Days[i]
	}

	for _, e := range meals {
		day, ok := days[e.ConsumedAt.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		day.Calories += e.Calories
		day.Protein += e.Protein
		day.Carbs += e.Carbs
		day.Fats += e.Fats
		summary.TotalCalories += e.Calories
		summary.TotalProtein += e.Protein
		summary.TotalCarbs += e.Carbs
		summary.TotalFats += e.Fats
	}
	for _, e := range workouts {
		day, ok := days[e.PerformedAt.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		day.Workouts++
		day.WorkoutMinutes += e.DurationMinutes
		day.CaloriesBurned += e.CaloriesBurned
		summary.TotalWorkouts++
		summary.TotalWorkoutMinutes += e.DurationMinutes
		summary.TotalCaloriesBurned += e.CaloriesBurned
	}

	summary.AvgDailyCalories = math.Round(summary.TotalCalories / 7)
	summary.AvgDailyCaloriesBurn = math.Round(summary.TotalCaloriesBurned / 7)
	return summary, nil
}
