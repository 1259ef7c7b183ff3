package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/secrets"
	"github.com/spigell/jobstir/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database migrations for the postgres storage driver",
	Run: func(cmd *cobra.Command, _ []string) {
		config, logger := setup()

		db, err := connectDatabase(cmd.Context(), config.Storage)
		if err != nil {
			logger.Fatal("connecting to the database", zap.Error(err),
				zap.String("hint", "set JOBSTIR_DATABASE_URL_FILE or storage.database-url-file"),
			)
		}
		defer db.Close()

		if err := storage.Migrate(cmd.Context(), db); err != nil {
			logger.Fatal("applying migrations", zap.Error(err))
		}

		logger.Info("migrations applied")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func connectDatabase(ctx context.Context, cfg storage.Config) (*sql.DB, error) {
	url, err := secrets.Load(secrets.Source{
		Name: "database url",
		File: cfg.DatabaseURLFile,
		Env:  "JOBSTIR_DATABASE_URL",
	})
	if err != nil {
		return nil, err
	}

	db, err := storage.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return db, nil
}
