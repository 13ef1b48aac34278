package routes

import (
	"net/http"

	"github.com/fitfuel/fitfuel/internal/app"
	"github.com/fitfuel/fitfuel/internal/handler"
	"github.com/fitfuel/fitfuel/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	goal := handler.NewGoalHandler(app.GoalService)
	activity := handler.NewActivityHandler(app.ActivityService, app.Cfg.MaxPhotoUploadMemory)
	events := handler.NewEventsHandler(app.Hub, app.Cfg.AppURL)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/defaults", middleware.RequireAuth(goal.Defaults))
	mux.HandleFunc("POST /api/goals/suggestion", middleware.RequireAuth(goal.CreateFromSuggestion))
	mux.HandleFunc("POST /api/goals/refresh", middleware.RequireAuth(goal.Refresh))
	mux.HandleFunc("POST /api/goals/force-reset", middleware.RequireAuth(goal.ForceReset))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))

	// Activity log
	mux.HandleFunc("POST /api/activity/meals", middleware.RequireAuth(activity.LogMeal))
	mux.HandleFunc("POST /api/activity/workouts", middleware.RequireAuth(activity.LogWorkout))
	mux.HandleFunc("GET /api/activity/weekly", middleware.RequireAuth(activity.Weekly))

	// Realtime
	mux.HandleFunc("GET /api/events", middleware.RequireAuth(events.Subscribe))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Authenticate(app.AuthService),
		middleware.RequestLogging,
	)
}
