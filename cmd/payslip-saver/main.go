// Command payslip-saver archives payslips from a payroll portal into Google Drive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/payslip-saver/internal/adapters/driven/config/file"
	"github.com/custodia-labs/payslip-saver/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/payslip-saver/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/payslip-saver/internal/adapters/driving/cli"
	"github.com/custodia-labs/payslip-saver/internal/connectors/google"
	"github.com/custodia-labs/payslip-saver/internal/connectors/google/drive"
	"github.com/custodia-labs/payslip-saver/internal/connectors/google/gmail"
	"github.com/custodia-labs/payslip-saver/internal/connectors/payslip/epaywindow"
	"github.com/custodia-labs/payslip-saver/internal/connectors/payslip/portus"
	"github.com/custodia-labs/payslip-saver/internal/connectors/scraper"
	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
	"github.com/custodia-labs/payslip-saver/internal/core/services"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// configDirEnv overrides the config directory (default ~/.payslip-saver).
const configDirEnv = services.EnvPrefix + "CONFIG_DIR"

// memoryJournalPath selects the in-memory run journal.
const memoryJournalPath = ":memory:"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := services.LoadDotEnv(".env"); err != nil {
		return err
	}

	store, err := file.NewConfigStore(os.Getenv(configDirEnv))
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(store)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	logger.SetVerbose(settings.Log.Verbose)
	logger.SetTimeFormat(settings.Log.TimeFormat)

	journal, err := openJournal(settings.Journal.Path, filepath.Dir(store.Path()))
	if err != nil {
		return err
	}
	defer journal.Close()

	cli.Configure(cli.Config{
		SettingsService: settingsService,
		HistoryService:  services.NewHistoryService(journal),
		NewRuntime: func(ctx context.Context, s *domain.Settings) (*cli.Runtime, error) {
			return newRuntime(ctx, s, journal)
		},
		Version: version,
	})

	return cli.Execute(ctx)
}

// openJournal opens the run journal. An empty path keeps it beside the config.
func openJournal(path, configDir string) (driven.RunJournal, error) {
	switch path {
	case memoryJournalPath:
		return memory.NewRunJournal(), nil
	case "":
		path = filepath.Join(configDir, "data", "journal.db")
	}
	store, err := sqlite.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run journal: %w", err)
	}
	return store, nil
}

// newRuntime wires the provider, Google adapters and core services for one run.
func newRuntime(ctx context.Context, s *domain.Settings, journal driven.RunJournal) (*cli.Runtime, error) {
	provider, err := newProvider(s)
	if err != nil {
		return nil, err
	}

	oauthCfg, err := google.LoadClientConfig(s.Google.ClientSecretFile)
	if err != nil {
		return nil, err
	}
	ts, err := google.NewTokenSource(ctx, oauthCfg, google.TokenFile{Path: s.Google.TokenFile})
	if err != nil {
		return nil, err
	}

	gmailSvc, err := google.NewGmailService(ctx, ts)
	if err != nil {
		return nil, err
	}
	driveSvc, err := google.NewDriveService(ctx, ts)
	if err != nil {
		return nil, err
	}

	mailbox := gmail.New(gmailSvc)
	archive := drive.New(driveSvc, drive.Config{
		FolderName:    s.Drive.FolderName,
		PageSize:      int64(s.Drive.ListPageSize),
		ListTimeout:   s.Drive.ListTimeout,
		UploadTimeout: s.Drive.UploadTimeout,
		AppName:       s.AppName,
	})

	triggerCfg := s.Trigger
	triggerCfg.ProcessedLabel = s.ProcessedLabelName()
	trigger := services.NewTriggerGate(mailbox, triggerCfg)
	reporter := services.NewReporter(mailbox, s.Reporter.To, s.ReportSubject()).WithTimeout(s.Reporter.Timeout)

	return &cli.Runtime{
		Orchestrator: services.NewRunOrchestrator(trigger, provider, archive, reporter, journal, s.CompanyName),
		Trigger:      trigger,
	}, nil
}

// newProvider selects the payroll portal integration.
func newProvider(s *domain.Settings) (driven.PayslipProvider, error) {
	session := scraper.Config{
		BaseURL:         s.ProviderSite.BaseURL,
		LoginTimeout:    s.ProviderSite.LoginTimeout,
		RequestTimeout:  s.ProviderSite.RequestTimeout,
		DownloadTimeout: s.ProviderSite.DownloadTimeout,
	}

	switch s.Provider {
	case domain.ProviderEPayWindow:
		p, err := epaywindow.New(epaywindow.Config{
			Session:     session,
			Username:    s.ProviderSite.Username,
			Password:    s.ProviderSite.Password,
			PageSize:    s.ProviderSite.ListPageSize,
			DownloadDir: s.DownloadDir,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case domain.ProviderPortus:
		p, err := portus.New(portus.Config{
			Session:     session,
			Username:    s.ProviderSite.Username,
			Password:    s.ProviderSite.Password,
			PageSize:    s.ProviderSite.ListPageSize,
			DownloadDir: s.DownloadDir,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", domain.ErrInvalidSettings, s.Provider)
	}
}
