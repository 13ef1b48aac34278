package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitfuel/fitfuel/internal/app"
	"github.com/fitfuel/fitfuel/internal/config"
	"github.com/fitfuel/fitfuel/internal/logger"
	"github.com/fitfuel/fitfuel/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Options{
		Dev:       cfg.IsDevelopment(),
		SentryDSN: cfg.SentryDSN,
		Env:       cfg.AppEnv,
		Service:   "server",
	})
	defer logger.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		logger.Flush()
		os.Exit(1)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// no WriteTimeout: /api/events holds connections open
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", cfg.AppURL,
			"timezone", cfg.Timezone, "week_start", cfg.WeekStart)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
		}
		return
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
