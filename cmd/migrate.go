package cmd

import (
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/repositories/postgres"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded Postgres migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.URL == "" {
			return errors.New("database.url is required")
		}
		ctx := cmd.Context()
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.ApplyMigrations(ctx, pool); err != nil {
			return err
		}
		logger.GetLogger().Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
