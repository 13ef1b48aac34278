package app

import (
	"context"
	"fmt"

	"github.com/fitfuel/fitfuel/internal/config"
	"github.com/fitfuel/fitfuel/internal/db"
	"github.com/fitfuel/fitfuel/internal/period"
	"github.com/fitfuel/fitfuel/internal/realtime"
	"github.com/fitfuel/fitfuel/internal/repository"
	"github.com/fitfuel/fitfuel/internal/service"
	"github.com/fitfuel/fitfuel/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Hub             *realtime.Hub
	Users           repository.UserRepository
	AuthService     *service.AuthService
	EmailService    *service.EmailService
	GoalService     *service.GoalService
	ActivityService *service.ActivityService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a, err := NewWithDB(ctx, cfg, database)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// NewWithDB wires the application around an already migrated database.
func NewWithDB(ctx context.Context, cfg *config.Config, database *sqlx.DB) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	periods := period.New(loc, cfg.WeekStart)
	clock := clockwork.NewRealClock()

	// Repositories
	userRepository := repository.NewUserRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	activityRepository := repository.NewActivityRepository(database)

	// Storage
	photos, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Events
	hub := realtime.NewHub()
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	events := service.EventFanout{hub}
	if cfg.GoalNotifications {
		events = append(events, service.NewGoalMailer(emailService, userRepository))
	}

	// Services
	aggregator := service.NewProgressAggregator(activityRepository, periods, cfg.AggregationTimeout)
	goalService := service.NewGoalService(goalRepository, aggregator, periods, clock, events)
	activityService := service.NewActivityService(activityRepository, photos, periods, clock, events)
	authService := service.NewAuthService(
		userRepository,
		goalService,
		clock,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.IsProduction(),
	)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Hub:             hub,
		Users:           userRepository,
		AuthService:     authService,
		EmailService:    emailService,
		GoalService:     goalService,
		ActivityService: activityService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
