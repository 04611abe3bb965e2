package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/payslip-saver/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Settings are read from the config file and can be overridden with
PAYSLIP_SAVER_* environment variables or a .env file in the working directory.
For example provider_site.password is overridden by PAYSLIP_SAVER_PROVIDER_SITE_PASSWORD.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a setting in the config file",
	Long: `Stores a setting in the config file. When the value is omitted for a
secret such as provider_site.password it is read from the terminal without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, key := range services.Keys() {
			cmd.Printf("%-42s %s\n", key, services.EnvKey(key))
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("[General]")
	cmd.Printf("  App name: %s\n", s.AppName)
	cmd.Printf("  Company: %s\n", orUnset(s.CompanyName))
	cmd.Printf("  Download dir: %s\n", s.DownloadDir)
	cmd.Printf("  Provider: %s\n", s.Provider)
	cmd.Printf("  Mode: %s\n", s.Run.Mode)
	cmd.Printf("  Use trigger: %t\n", s.Run.UseTrigger)
	cmd.Println()

	cmd.Println("[Provider site]")
	cmd.Printf("  Base URL: %s\n", orDefault(s.ProviderSite.BaseURL))
	cmd.Printf("  Username: %s\n", orUnset(s.ProviderSite.Username))
	if s.ProviderSite.Password != "" {
		cmd.Printf("  Password: %s\n", maskSecret(s.ProviderSite.Password))
	} else {
		cmd.Println("  Password: (not set)")
	}
	cmd.Println()

	cmd.Println("[Google]")
	cmd.Printf("  Client secret file: %s\n", orUnset(s.Google.ClientSecretFile))
	cmd.Printf("  Token file: %s\n", orDefault(s.Google.TokenFile))
	cmd.Printf("  Trigger search: %s\n", orUnset(s.Trigger.SearchCriteria))
	cmd.Printf("  Processed label: %s\n", s.ProcessedLabelName())
	cmd.Printf("  Drive folder: %s\n", s.Drive.FolderName)
	cmd.Println()

	cmd.Println("[Reporter]")
	cmd.Printf("  To: %s\n", orUnset(s.Reporter.To))
	cmd.Printf("  Subject: %s\n", s.ReportSubject())
	cmd.Println()

	if err := s.Validate(); err != nil {
		cmd.Printf("Status: %v\n", err)
	} else {
		cmd.Println("Status: ready")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case services.IsSecretKey(key):
		cmd.Printf("%s: ", key)
		value = readSecret(cmd.InOrStdin())
		cmd.Println()
	default:
		return fmt.Errorf("missing value for %s", key)
	}

	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("empty value for %s", key)
	}
	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	if services.IsSecretKey(key) {
		cmd.Printf("%s updated\n", key)
	} else {
		cmd.Printf("%s = %s\n", key, value)
	}
	return nil
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func orDefault(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:2] + "..." + secret[len(secret)-2:]
}
