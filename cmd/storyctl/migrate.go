package main

import (
	"errors"
	"fmt"

	"story-branches/internal/config"
	"story-branches/internal/database"

	"github.com/spf13/cobra"
)

var flagSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the postgres schema",
	Long: `Applies or rolls back the embedded postgres migrations.
The sqlite store creates its schema on open and needs no migrations.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres(); err != nil {
			return err
		}
		if err := database.ApplyMigrations(cfg.PostgresDSN(), cliLogger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres(); err != nil {
			return err
		}
		if flagSteps <= 0 {
			return errors.New("--steps must be positive")
		}
		if err := database.RollbackMigrations(cfg.PostgresDSN(), flagSteps, cliLogger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", flagSteps)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&flagSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

func requirePostgres() error {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("migrations apply to the postgres store only (STORE_DRIVER=%s)", cfg.StoreDriver)
	}
	return nil
}
