package cmd

import (
	"github.com/fitfuel/fitfuel/internal/config"
	"github.com/fitfuel/fitfuel/internal/db"
	"github.com/fitfuel/fitfuel/internal/logger"
	"github.com/jmoiron/sqlx"

	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				return db.RunMigrations(database.DB, cfg.DBDriver)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				return db.MigrateDown(database.DB, cfg.DBDriver)
			})
		},
	})

	return cmd
}

func initLogger(cfg *config.Config, service string) {
	logger.Init(logger.Options{
		Dev:       cfg.IsDevelopment(),
		SentryDSN: cfg.SentryDSN,
		Env:       cfg.AppEnv,
		Service:   service,
	})
}
