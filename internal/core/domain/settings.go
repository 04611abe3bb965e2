package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProviderKind identifies a provider portal integration.
type ProviderKind string

// Supported provider portals.
const (
	// ProviderEPayWindow is the ePayWindow portal (path-parameter downloads).
	ProviderEPayWindow ProviderKind = "epaywindow"

	// ProviderPortus is the Portus portal (query-parameter downloads).
	ProviderPortus ProviderKind = "portus"
)

// IsValid returns true if the provider is recognised.
func (p ProviderKind) IsValid() bool {
	switch p {
	case ProviderEPayWindow, ProviderPortus:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p ProviderKind) String() string {
	return string(p)
}

// Settings is the typed application configuration.
type Settings struct {
	AppName     string
	CompanyName string
	DownloadDir string
	Provider    ProviderKind

	Run          RunSettings
	ProviderSite ProviderSiteSettings
	Google       GoogleSettings
	Trigger      TriggerSettings
	Drive        DriveSettings
	Reporter     ReporterSettings
	Journal      JournalSettings
	Log          LogSettings
}

// RunSettings holds the default run parameters.
type RunSettings struct {
	Mode       RunMode
	UseTrigger bool
}

// Options returns the run options described by the settings.
func (r RunSettings) Options() RunOptions {
	return RunOptions{UseTrigger: r.UseTrigger, Mode: r.Mode}
}

// ProviderSiteSettings configures the provider portal session.
type ProviderSiteSettings struct {
	// BaseURL overrides the integration's default portal address.
	BaseURL         string
	Username        string
	Password        string
	ListPageSize    int
	LoginTimeout    time.Duration
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
}

// GoogleSettings locates the OAuth client secret and cached token.
type GoogleSettings struct {
	ClientSecretFile string
	TokenFile        string
}

// TriggerSettings configures the trigger email gate.
type TriggerSettings struct {
	SearchCriteria      string
	ProcessedLabel      string
	ApplyProcessedLabel bool
	MarkAsRead          bool
	Timeout             time.Duration
}

// DriveSettings configures the archive folder.
type DriveSettings struct {
	FolderName    string
	ListPageSize  int
	ListTimeout   time.Duration
	UploadTimeout time.Duration
}

// ReporterSettings configures completion and error notices.
type ReporterSettings struct {
	To      string
	Subject string
	Timeout time.Duration
}

// JournalSettings configures run history. An empty Path selects the default
// database file and ":memory:" keeps history for the life of the process.
type JournalSettings struct {
	Path string
}

// LogSettings configures process logging.
type LogSettings struct {
	Verbose bool
	// TimeFormat is a Go time layout stamped on each log line; empty disables.
	TimeFormat string
}

// DefaultAppName is used when no app_name is configured.
const DefaultAppName = "payslip-saver"

// DefaultSettings returns settings with every default applied.
func DefaultSettings() *Settings {
	return &Settings{
		AppName:  DefaultAppName,
		Provider: ProviderEPayWindow,
		Run: RunSettings{
			Mode:       RunModeSync,
			UseTrigger: true,
		},
		ProviderSite: ProviderSiteSettings{
			ListPageSize:    5,
			LoginTimeout:    10 * time.Second,
			RequestTimeout:  10 * time.Second,
			DownloadTimeout: 60 * time.Second,
		},
		Trigger: TriggerSettings{
			ApplyProcessedLabel: true,
			MarkAsRead:          true,
			Timeout:             10 * time.Second,
		},
		Drive: DriveSettings{
			FolderName:    "Payslips",
			ListPageSize:  10,
			ListTimeout:   30 * time.Second,
			UploadTimeout: 60 * time.Second,
		},
		Reporter: ReporterSettings{
			Timeout: 30 * time.Second,
		},
	}
}

// ProcessedLabelName returns the configured label or "{app}-Processed".
func (s *Settings) ProcessedLabelName() string {
	if s.Trigger.ProcessedLabel != "" {
		return s.Trigger.ProcessedLabel
	}
	return s.AppName + "-Processed"
}

// ReportSubject returns the configured subject or "Payslip Saver Report - {app}".
func (s *Settings) ReportSubject() string {
	if s.Reporter.Subject != "" {
		return s.Reporter.Subject
	}
	return "Payslip Saver Report - " + s.AppName
}

// Validate checks that every setting required for a run is present.
// The run mode is deliberately not checked here: an unknown mode is
// reported by the orchestrator through the failure notice.
func (s *Settings) Validate() error {
	var missing []string
	if s.CompanyName == "" {
		missing = append(missing, "company_name")
	}
	if s.ProviderSite.Username == "" {
		missing = append(missing, "provider_site.username")
	}
	if s.ProviderSite.Password == "" {
		missing = append(missing, "provider_site.password")
	}
	if s.Google.ClientSecretFile == "" {
		missing = append(missing, "google.client_secret_file")
	}
	if s.Reporter.To == "" {
		missing = append(missing, "reporter.to")
	}
	if s.Run.UseTrigger && s.Trigger.SearchCriteria == "" {
		missing = append(missing, "trigger.search_criteria")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidSettings, strings.Join(missing, ", "))
	}
	if !s.Provider.IsValid() {
		return fmt.Errorf("%w: unsupported provider %q", ErrInvalidSettings, s.Provider)
	}
	return nil
}
