package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/jmoiron/sqlx"
)

// Column names per metric. Never built from user input.
var (
	nutritionColumns = map[model.Metric]string{
		model.MetricCalories: "calories",
		model.MetricProtein:  "protein",
		model.MetricCarbs:    "carbs",
		model.MetricFats:     "fats",
	}
	fitnessColumns = map[model.Metric]string{
		model.MetricCaloriesBurned: "calories_burned",
		model.MetricWorkoutMinutes: "duration_minutes",
	}
)

// ActivityRepository is the activity log store. All range queries filter on
// event time (consumed_at / performed_at) over [start, end).
type ActivityRepository interface {
	CreateNutrition(ctx context.Context, entry *model.NutritionEntry) error
	CreateFitness(ctx context.Context, entry *model.FitnessEntry) error
	NutritionSum(ctx context.Context, ownerID string, metric model.Metric, start, end time.Time) (float64, error)
	FitnessSum(ctx context.Context, ownerID string, metric model.Metric, start, end time.Time) (float64, error)
	FitnessCount(ctx context.Context, ownerID string, start, end time.Time) (int, error)
	NutritionEntries(ctx context.Context, ownerID string, start, end time.Time) ([]*model.NutritionEntry, error)
	FitnessEntries(ctx context.Context, ownerID string, start, end time.Time) ([]*model.FitnessEntry, error)
}

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) CreateNutrition(ctx context.Context, entry *model.NutritionEntry) error {
	query := `INSERT INTO nutrition_logs (id, owner_id, meal, calories, protein, carbs, fats, image_url, consumed_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.Meal,
		entry.Calories,
		entry.Protein,
		entry.Carbs,
		entry.Fats,
		entry.PhotoKey,
		entry.ConsumedAt.UTC(),
		entry.CreatedAt.UTC(),
	)
	return err
}

func (r *activityRepository) CreateFitness(ctx context.Context, entry *model.FitnessEntry) error {
	query := `INSERT INTO fitness_logs (id, owner_id, activity, duration_minutes, calories_burned, performed_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.Activity,
		entry.DurationMinutes,
		entry.CaloriesBurned,
		entry.PerformedAt.UTC(),
		entry.CreatedAt.UTC(),
	)
	return err
}

func (r *activityRepository) NutritionSum(ctx context.Context, ownerID string, metric model.Metric, start, end time.Time) (float64, error) {
	column, ok := nutritionColumns[metric]
	if !ok {
		return 0, fmt.Errorf("metric %q is not a nutrition field", metric)
	}

	query := `SELECT COALESCE(SUM(` + column + `), 0) FROM nutrition_logs
	          WHERE owner_id = $1 AND consumed_at >= $2 AND consumed_at < $3`

	var sum float64
	err := r.db.QueryRowContext(ctx, query, ownerID, start.UTC(), end.UTC()).Scan(&sum)
	return sum, err
}

func (r *activityRepository) FitnessSum(ctx context.Context, ownerID string, metric model.Metric, start, end time.Time) (float64, error) {
	column, ok := fitnessColumns[metric]
	if !ok {
		return 0, fmt.Errorf("metric %q is not a fitness field", metric)
	}

	query := `SELECT COALESCE(SUM(` + column + `), 0) FROM fitness_logs
	          WHERE owner_id = $1 AND performed_at >= $2 AND performed_at < $3`

	var sum float64
	err := r.db.QueryRowContext(ctx, query, ownerID, start.UTC(), end.UTC()).Scan(&sum)
	return sum, err
}

func (r *activityRepository) FitnessCount(ctx context.Context, ownerID string, start, end time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM fitness_logs
	          WHERE owner_id = $1 AND performed_at >= $2 AND performed_at < $3`

	var count int
	err := r.db.QueryRowContext(ctx, query, ownerID, start.UTC(), end.UTC()).Scan(&count)
	return count, err
}

func (r *activityRepository) NutritionEntries(ctx context.Context, ownerID string, start, end time.Time) ([]*model.NutritionEntry, error) {
	var entries []*model.NutritionEntry
	query := `SELECT * FROM nutrition_logs
	          WHERE owner_id = $1 AND consumed_at >= $2 AND consumed_at < $3
	          ORDER BY consumed_at ASC`

	err := r.db.SelectContext(ctx, &entries, query, ownerID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *activityRepository) FitnessEntries(ctx context.Context, ownerID string, start, end time.Time) ([]*model.FitnessEntry, error) {
	var entries []*model.FitnessEntry
	query := `SELECT * FROM fitness_logs
	          WHERE owner_id = $1 AND performed_at >= $2 AND performed_at < $3
	          ORDER BY performed_at ASC`

	err := r.db.SelectContext(ctx, &entries, query, ownerID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}

	return entries, nil
}
