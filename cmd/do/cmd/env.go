package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fitfuel/fitfuel/internal/app"
	"github.com/fitfuel/fitfuel/internal/config"
	"github.com/fitfuel/fitfuel/internal/db"
	"github.com/fitfuel/fitfuel/internal/logger"
	"github.com/jmoiron/sqlx"
)

// withDB runs fn against the configured database without wiring services.
func withDB(fn func(*config.Config, *sqlx.DB) error) error {
	cfg := config.Load()
	initLogger(cfg, "do")
	defer logger.Flush()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	return fn(cfg, database)
}

// withApp runs fn against a fully wired, migrated application.
func withApp(fn func(context.Context, *app.App) error) error {
	cfg := config.Load()
	initLogger(cfg, "do")
	defer logger.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("failed to close app", "error", err)
		}
	}()

	return fn(ctx, a)
}
