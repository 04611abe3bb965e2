package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for an unprocessed trigger email",
	Long: `Searches Gmail for the trigger email and reports whether a run is required.
The email is not labelled or marked as read.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	rt, settings, err := prepareRuntime(cmd.Context(), func(s *domain.Settings) {
		s.Run.UseTrigger = true
	})
	if err != nil {
		return err
	}

	cmd.Printf("Searching for: %s\n", settings.Trigger.SearchCriteria)
	required, err := rt.Trigger.IsProcessingRequired(cmd.Context())
	if err != nil {
		return fmt.Errorf("trigger check failed: %w", err)
	}

	cmd.Printf("Trigger email: %s\n", rt.Trigger.State())
	if required {
		cmd.Println("Processing required.")
	} else {
		cmd.Println("No processing required.")
	}
	return nil
}
