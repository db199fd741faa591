package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podiumlab/podium/internal/history"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "History database management",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the history schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := history.Open(cmd.Context(), cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()

		if err := store.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		cmd.Println("Schema is up to date.")
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all evaluation history (destructive, dev mode only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.DevMode {
			return fmt.Errorf("reset is only available with dev_mode: true")
		}
		store, err := history.Open(cmd.Context(), cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()

		if err := store.ResetAll(cmd.Context()); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		cmd.Println("History wiped.")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbResetCmd)
}
