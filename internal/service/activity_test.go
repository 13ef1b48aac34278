package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/period"
)

type memoryPhotos struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryPhotos() *memoryPhotos {
	return &memoryPhotos{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryPhotos) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = b
	m.types[key] = contentType
	return nil
}

func (m *memoryPhotos) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryPhotos) URL(_ context.Context, key string) (string, error) {
	return "https://photos.test/" + key, nil
}

func newActivityService(env *testEnv, photos *memoryPhotos) *ActivityService {
	svc := NewActivityService(env.activity, nil, period.New(time.UTC, time.Sunday), env.clock, env.events)
	if photos != nil {
		svc.photos = photos
	}
	return svc
}

func TestLogMealFeedsGoalProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	activity := newActivityService(env, nil)

	goal, err := env.goals.Create(ctx, owner, model.GoalDailyCalories, 2000, "calories")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	entry, err := activity.LogMeal(ctx, owner, MealInput{Meal: " Oatmeal ", Calories: 350, Protein: 12}, nil)
	if err != nil {
		t.Fatalf("LogMeal: %v", err)
	}
	if entry.Meal != "Oatmeal" || !entry.ConsumedAt.Equal(testNow) {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if len(env.events.activity) != 1 || env.events.activity[0] != "meal" {
		t.Fatalf("activity event not published: %v", env.events.activity)
	}

	if _, err := env.goals.RefreshAll(ctx, owner); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	if got := env.goal(t, goal.ID).CurrentValue; got != 350 {
		t.Fatalf("currentValue = %v, want 350", got)
	}
}

func TestLogMealValidation(t *testing.T) {
	env := newTestEnv(t)
	activity := newActivityService(env, nil)
	future := testNow.Add(2 * time.Hour)

	tests := []struct {
		name  string
		in    MealInput
		field string
	}{
		{"missing meal", MealInput{Calories: 100}, "meal"},
		{"negative calories", MealInput{Meal: "x", Calories: -1}, "calories"},
		{"negative fats", MealInput{Meal: "x", Fats: -3}, "fats"},
		{"future", MealInput{Meal: "x", ConsumedAt: &future}, "consumed_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := activity.LogMeal(context.Background(), owner, tt.in, nil)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected ValidationError on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestLogMealPhoto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{1}, 128)...)

	_, err := newActivityService(env, nil).LogMeal(ctx, owner, MealInput{Meal: "salad"}, &Photo{Body: bytes.NewReader(png), Size: int64(len(png))})
	if !errors.Is(err, ErrPhotosDisabled) {
		t.Fatalf("expected ErrPhotosDisabled, got %v", err)
	}

	photos := newMemoryPhotos()
	activity := newActivityService(env, photos)
	entry, err := activity.LogMeal(ctx, owner, MealInput{Meal: "salad", Calories: 200}, &Photo{Body: bytes.NewReader(png), Size: int64(len(png))})
	if err != nil {
		t.Fatalf("LogMeal: %v", err)
	}
	if entry.PhotoKey == nil || !strings.HasPrefix(*entry.PhotoKey, "meals/"+owner+"/") || !strings.HasSuffix(*entry.PhotoKey, ".png") {
		t.Fatalf("unexpected photo key %v", entry.PhotoKey)
	}
	if !bytes.Equal(photos.objects[*entry.PhotoKey], png) || photos.types[*entry.PhotoKey] != "image/png" {
		t.Fatal("stored photo does not match upload")
	}
	if entry.PhotoURL == "" {
		t.Fatal("expected a photo URL")
	}

	_, err = activity.LogMeal(ctx, owner, MealInput{Meal: "salad"}, &Photo{Body: strings.NewReader("not an image at all"), Size: 19})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "photo" {
		t.Fatalf("expected photo ValidationError, got %v", err)
	}
}

func TestLogWorkout(t *testing.T) {
	env := newTestEnv(t)
	activity := newActivityService(env, nil)
	earlier := testNow.Add(-3 * time.Hour)

	entry, err := activity.LogWorkout(context.Background(), owner, WorkoutInput{Activity: "cycling", DurationMinutes: 40, CaloriesBurned: 380, PerformedAt: &earlier})
	if err != nil {
		t.Fatalf("LogWorkout: %v", err)
	}
	if !entry.PerformedAt.Equal(earlier) || !entry.CreatedAt.Equal(testNow) {
		t.Fatalf("event time and record time mixed up: %+v", entry)
	}

	_, err = activity.LogWorkout(context.Background(), owner, WorkoutInput{Activity: "cycling", DurationMinutes: -5})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "duration_minutes" {
		t.Fatalf("expected duration ValidationError, got %v", err)
	}
}

func TestWeeklySummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	activity := newActivityService(env, nil)

	today := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	env.logMeal(t, 2000, 100, today.Add(8*time.Hour))
	env.logMeal(t, 1500, 80, today.AddDate(0, 0, -6).Add(12*time.Hour))
	// outside the seven days
	env.logMeal(t, 9999, 0, today.AddDate(0, 0, -7).Add(12*time.Hour))
	env.logWorkout(t, 45, today.AddDate(0, 0, -2).Add(7*time.Hour))

	summary, err := activity.WeeklySummary(ctx, owner, 0)
	if err != nil {
		t.Fatalf("WeeklySummary: %v", err)
	}
	if len(summary.Days) != 7 || summary.Days[0].Date != "2026-10-08" || summary.Days[6].Date != "2026-10-14" {
		t.Fatalf("unexpected day range: %+v", summary.Days)
	}
	if summary.TotalCalories != 3500 || summary.AvgDailyCalories != 500 {
		t.Fatalf("calories total %v avg %v", summary.TotalCalories, summary.AvgDailyCalories)
	}
	if summary.TotalWorkouts != 1 || summary.Days[4].WorkoutMinutes != 45 {
		t.Fatalf("workouts not bucketed: %+v", summary.Days[4])
	}

	previous, err := activity.WeeklySummary(ctx, owner, 1)
	if err != nil {
		t.Fatalf("WeeklySummary previous: %v", err)
	}
	if previous.TotalCalories != 9999 {
		t.Fatalf("previous week calories = %v, want 9999", previous.TotalCalories)
	}

	if _, err := activity.WeeklySummary(ctx, owner, -1); err == nil {
		t.Fatal("negative weeks_back accepted")
	}
}
