package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// Flags for run.
var (
	runMode      string
	runNoTrigger bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Archive missing payslips",
	Long: `Runs the payslip pipeline once.

Modes:
  sync            - archive every provider payslip missing from Drive (default)
  downloadLatest  - archive the newest provider payslip regardless of Drive

The command exits 0 whenever the run completes, including runs that failed
and sent an error report.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "", "Run mode (sync, downloadLatest)")
	runCmd.Flags().BoolVar(&runNoTrigger, "no-trigger", false, "Run without waiting for a trigger email")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	rt, settings, err := prepareRuntime(cmd.Context(), func(s *domain.Settings) {
		if runMode != "" {
			s.Run.Mode = domain.RunMode(runMode)
		}
		if runNoTrigger {
			s.Run.UseTrigger = false
		}
	})
	if err != nil {
		return err
	}

	report := rt.Orchestrator.Run(cmd.Context(), settings.Run.Options())
	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *domain.RunReport) {
	cmd.Printf("Run %s: %s (%s)\n", report.RunID, report.Outcome, report.Duration().Round(time.Millisecond))
	switch report.Outcome {
	case domain.OutcomeSkipped:
		cmd.Println("No unprocessed trigger email.")
	case domain.OutcomeNoop:
		cmd.Println("Archive already up to date.")
	case domain.OutcomeSuccess:
		for _, res := range report.Results {
			cmd.Printf("  %s\n", res.FileURL)
		}
		if len(report.Results) > 0 {
			cmd.Printf("Folder: %s\n", report.Results[0].FolderURL)
		}
	case domain.OutcomeFailure:
		if report.Err != nil {
			cmd.Printf("%s\n", report.Err)
		}
	}
}
