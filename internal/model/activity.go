package model

import (
	"time"
)

// NutritionEntry is a logged meal. ConsumedAt is the event time used for
// period windows; CreatedAt is when it was recorded.
type NutritionEntry struct {
	ID         string    `db:"id" json:"id"`
	OwnerID    string    `db:"owner_id" json:"owner_id"`
	Meal       string    `db:"meal" json:"meal"`
	Calories   float64   `db:"calories" json:"calories"`
	Protein    float64   `db:"protein" json:"protein"`
	Carbs      float64   `db:"carbs" json:"carbs"`
	Fats       float64   `db:"fats" json:"fats"`
	PhotoKey   *string   `db:"image_url" json:"-"`
	PhotoURL   string    `db:"-" json:"photo_url,omitempty"`
	ConsumedAt time.Time `db:"consumed_at" json:"consumed_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FitnessEntry is a logged workout. PerformedAt is the event time.
type FitnessEntry struct {
	ID              string    `db:"id" json:"id"`
	OwnerID         string    `db:"owner_id" json:"owner_id"`
	Activity        string    `db:"activity" json:"activity"`
	DurationMinutes float64   `db:"duration_minutes" json:"duration_minutes"`
	CaloriesBurned  float64   `db:"calories_burned" json:"calories_burned"`
	PerformedAt     time.Time `db:"performed_at" json:"performed_at"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type DayTotals struct {
	Date           string  `json:"date"`
	Calories       float64 `json:"calories"`
	Protein        float64 `json:"protein"`
	Carbs          float64 `json:"carbs"`
	Fats           float64 `json:"fats"`
	Workouts       int     `json:"workouts"`
	WorkoutMinutes float64 `json:"workout_minutes"`
	CaloriesBurned float64 `json:"calories_burned"`
}

// WeeklySummary is the seven-day rollup handed to the recommendation collaborator.
type WeeklySummary struct {
	From                 time.Time   `json:"from"`
	To                   time.Time   `json:"to"`
	TotalCalories        float64     `json:"total_calories"`
	AvgDailyCalories     float64     `json:"avg_daily_calories"`
	TotalProtein         float64     `json:"total_protein"`
	TotalCarbs           float64     `json:"total_carbs"`
	TotalFats            float64     `json:"total_fats"`
	TotalWorkouts        int         `json:"total_workouts"`
	TotalWorkoutMinutes  float64     `json:"total_workout_minutes"`
	TotalCaloriesBurned  float64     `json:"total_calories_burned"`
	AvgDailyCaloriesBurn float64     `json:"avg_daily_calories_burn"`
	Days                 []DayTotals `json:"days"`
}
