package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("payslip-saver version %s\n", version)
		if verbose {
			cmd.Printf("  go:        %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			cmd.Printf("  providers: %s, %s\n", domain.ProviderEPayWindow, domain.ProviderPortus)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
