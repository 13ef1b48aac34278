package model

import (
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type GoalType string

const (
	GoalDailyCalories        GoalType = "daily_calories"
	GoalDailyProtein         GoalType = "daily_protein"
	GoalDailyCarbs           GoalType = "daily_carbs"
	GoalDailyFats            GoalType = "daily_fats"
	GoalWeeklyWorkouts       GoalType = "weekly_workouts"
	GoalDailyCaloriesBurned  GoalType = "daily_calories_burned"
	GoalWeeklyWorkoutMinutes GoalType = "weekly_workout_minutes"
)

// Window is the length of a goal's period.
type Window string

const (
	WindowDay  Window = "day"
	WindowWeek Window = "week"
)

// Metric names the activity log aggregate a goal is measured against.
type Metric string

const (
	MetricCalories       Metric = "calories"
	MetricProtein        Metric = "protein"
	MetricCarbs          Metric = "carbs"
	MetricFats           Metric = "fats"
	MetricWorkouts       Metric = "workouts"
	MetricCaloriesBurned Metric = "calories_burned"
	MetricWorkoutMinutes Metric = "workout_minutes"
)

// Source reports which activity log a metric reads from.
func (m Metric) Source() string {
	switch m {
	case MetricCalories, MetricProtein, MetricCarbs, MetricFats:
		return "nutrition"
	default:
		return "fitness"
	}
}

type GoalTypeSpec struct {
	Metric Metric
	Window Window
	Unit   string
}

// GoalTypes is the closed set of supported goal types.
var GoalTypes = map[GoalType]GoalTypeSpec{
	GoalDailyCalories:        {Metric: MetricCalories, Window: WindowDay, Unit: "calories"},
	GoalDailyProtein:         {Metric: MetricProtein, Window: WindowDay, Unit: "grams"},
	GoalDailyCarbs:           {Metric: MetricCarbs, Window: WindowDay, Unit: "grams"},
	GoalDailyFats:            {Metric: MetricFats, Window: WindowDay, Unit: "grams"},
	GoalWeeklyWorkouts:       {Metric: MetricWorkouts, Window: WindowWeek, Unit: "workouts"},
	GoalDailyCaloriesBurned:  {Metric: MetricCaloriesBurned, Window: WindowDay, Unit: "calories"},
	GoalWeeklyWorkoutMinutes: {Metric: MetricWorkoutMinutes, Window: WindowWeek, Unit: "minutes"},
}

func (t GoalType) Spec() (GoalTypeSpec, bool) {
	spec, ok := GoalTypes[t]
	return spec, ok
}

func (t GoalType) Valid() bool {
	_, ok := GoalTypes[t]
	return ok
}

// Label turns daily_protein into "Daily Protein".
func (t GoalType) Label() string {
	// cases.Caser is stateful, so one per call
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
}

// SortedGoalTypes returns all goal types in a stable order.
func SortedGoalTypes() []GoalType {
	types := make([]GoalType, 0, len(GoalTypes))
	for t := range GoalTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

type Goal struct {
	ID           string     `db:"id" json:"id"`
	OwnerID      string     `db:"owner_id" json:"owner_id"`
	GoalType     GoalType   `db:"goal_type" json:"goal_type"`
	TargetValue  float64    `db:"target_value" json:"target_value"`
	CurrentValue float64    `db:"current_value" json:"current_value"`
	Unit         string     `db:"unit" json:"unit"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastResetAt  *time.Time `db:"last_reset_at" json:"last_reset_at"`
	Version      int64      `db:"version" json:"version"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Percentage is progress towards the target, capped at 100.
func (g *Goal) Percentage() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	return math.Min(100, g.CurrentValue/g.TargetValue*100)
}

func (g *Goal) Reached() bool {
	return g.TargetValue > 0 && g.CurrentValue >= g.TargetValue
}

// GoalProgress is a goal annotated for display.
type GoalProgress struct {
	*Goal
	Title      string  `json:"title"`
	Percentage float64 `json:"percentage"`
}

func NewGoalProgress(g *Goal) GoalProgress {
	return GoalProgress{
		Goal:       g,
		Title:      g.GoalType.Label(),
		Percentage: g.Percentage(),
	}
}

// GoalTemplate describes a goal before it is created.
type GoalTemplate struct {
	GoalType    GoalType `json:"goal_type"`
	TargetValue float64  `json:"target_value"`
	Unit        string   `json:"unit"`
}

// DefaultGoals are offered to new users.
func DefaultGoals() []GoalTemplate {
	return []GoalTemplate{
		{GoalType: GoalDailyCalories, TargetValue: 2000, Unit: "calories"},
		{GoalType: GoalDailyProtein, TargetValue: 120, Unit: "grams"},
		{GoalType: GoalWeeklyWorkouts, TargetValue: 4, Unit: "workouts"},
	}
}

// Suggestion is the goal payload produced by the recommendation collaborator.
type Suggestion struct {
	Type   string  `json:"type"`
	Target float64 `json:"target"`
	Unit   string  `json:"unit"`
}

// RefreshResult summarises one pass of the reset routine for an owner.
// RefreshedAt is the server time the pass was evaluated at.
type RefreshResult struct {
	OwnerID     string    `json:"owner_id"`
	Reset       int       `json:"reset"`
	Refreshed   int       `json:"refreshed"`
	Unchanged   int       `json:"unchanged"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Changed reports whether any goal was written.
func (r RefreshResult) Changed() bool {
	return r.Reset+r.Refreshed > 0
}

// GoalList is the listGoals response.
type GoalList struct {
	Goals        []GoalProgress `json:"goals"`
	RefreshedAt  time.Time      `json:"refreshed_at"`
	RefreshError string         `json:"refresh_error,omitempty"`
}
