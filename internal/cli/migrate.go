package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/db"
)

var migrateDown bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Revert all migrations instead of applying them")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if cfg.DatabaseDSN == "" {
			return errors.New("database_dsn is not configured")
		}

		logger := newLogger()
		if migrateDown {
			return db.RollbackMigrations(cfg.DatabaseDSN, logger)
		}
		return db.RunMigrations(cfg.DatabaseDSN, logger)
	},
}
