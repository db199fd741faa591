package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podiumlab/podium/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history <user_id>",
	Short: "Print a user's persisted evaluation records",
	Args:  cobra.ExactArgs(1),
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

		records, err := store.FetchHistory(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetch history: %w", err)
		}

		for _, rec := range records {
			line, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(line))
		}
		if len(records) == 0 {
			cmd.Printf("no evaluations recorded for %s\n", args[0])
		}
		return nil
	},
}
