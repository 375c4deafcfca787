package main

import (
	"fmt"
	"streamflix-api/internal/config"
	"streamflix-api/pkg/logging"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "streamflix",
		Short:         "StreamFlix API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.InitConfig()
			if err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}
			cfg = loaded
			logging.InitLogging()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Serving is the default action
			return runServe(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(newServeCommand(&cfg))
	rootCmd.AddCommand(newMigrateCommand(&cfg))

	return rootCmd
}
