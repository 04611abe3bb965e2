// Package cli implements the payslip-saver command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driving"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "payslip-saver",
	Short: "Archive payslips from a payroll portal into Google Drive",
	Long: `payslip-saver logs in to a payroll provider portal, downloads the payslips
missing from a Google Drive folder and uploads them there.

A run is normally gated on a trigger email in Gmail: once the payslips are
archived the email is labelled as processed and a report is emailed.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// Runtime holds the services a single run needs.
type Runtime struct {
	Orchestrator driving.RunOrchestrator
	Trigger      driving.TriggerGate
}

// RuntimeFactory builds the run services from validated settings. It is
// called lazily so commands such as auth work before Google access exists.
type RuntimeFactory func(ctx context.Context, settings *domain.Settings) (*Runtime, error)

// Config holds the services the commands depend on.
type Config struct {
	SettingsService driving.SettingsService
	HistoryService  driving.HistoryService
	NewRuntime      RuntimeFactory
	Version         string
}

var (
	settingsService driving.SettingsService
	historyService  driving.HistoryService
	newRuntime      RuntimeFactory
)

// Configure installs the services used by the commands.
func Configure(cfg Config) {
	settingsService = cfg.SettingsService
	historyService = cfg.HistoryService
	newRuntime = cfg.NewRuntime
	if cfg.Version != "" {
		version = cfg.Version
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

var errNotConfigured = errors.New("settings service not configured")

// prepareRuntime loads and validates settings, then builds the run services.
func prepareRuntime(ctx context.Context, adjust func(*domain.Settings)) (*Runtime, *domain.Settings, error) {
	if settingsService == nil || newRuntime == nil {
		return nil, nil, errNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if adjust != nil {
		adjust(settings)
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}

	rt, err := newRuntime(ctx, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare run: %w", err)
	}
	return rt, settings, nil
}
