package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Fitness community maintenance tools",
		Long:          `Administrative commands for schema migration, subscription expiry and fulfillment failure review.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: $CONFIG_PATH or config.yaml)")

	rootCmd.AddCommand(
		newMigrateCommand(),
		newExpireCommand(),
		newFailuresCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
