package main

import (
	"fmt"
	"streamflix-api/internal/config"
	"streamflix-api/internal/database"
	"streamflix-api/pkg/logging"

	"github.com/spf13/cobra"
)

func newMigrateCommand(cfg **config.Config) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.InitDatabase(*cfg); err != nil {
				return err
			}
			defer database.CloseDatabase()

			db := database.GetDB()
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logging.Infof("Database migration completed")

			if seed {
				if err := database.InsertDefaultData(db); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Insert the demo catalog")
	return cmd
}
