package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	records, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read run history: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for _, rec := range records {
		cmd.Printf("%s  %-8s  %-14s  uploaded=%d  %s\n",
			rec.StartedAt.Local().Format(time.DateTime),
			rec.Outcome,
			rec.Mode,
			rec.Uploaded,
			rec.RunID,
		)
		if rec.Stage != "" {
			cmd.Printf("    %s\n", rec.Stage)
		}
	}
	return nil
}
