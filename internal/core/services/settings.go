package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// defaultTokenFileName is the OAuth token file kept beside the config file.
const defaultTokenFileName = "token.json"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PAYSLIP_SAVER_"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAppName     = "app_name"
	keyCompanyName = "company_name"
	keyDownloadDir = "download_dir"
	keyProvider    = "provider"

	keyRunMode       = "run.mode"
	keyRunUseTrigger = "run.use_trigger"

	keySiteBaseURL         = "provider_site.base_url"
	keySiteUsername        = "provider_site.username"
	keySitePassword        = "provider_site.password"
	keySiteListPageSize    = "provider_site.list_page_size"
	keySiteLoginTimeout    = "provider_site.login_timeout_seconds"
	keySiteRequestTimeout  = "provider_site.request_timeout_seconds"
	keySiteDownloadTimeout = "provider_site.download_timeout_seconds"

	keyGoogleClientSecret = "google.client_secret_file"
	keyGoogleTokenFile    = "google.token_file"

	keyTriggerSearch     = "trigger.search_criteria"
	keyTriggerLabel      = "trigger.processed_label"
	keyTriggerApplyLabel = "trigger.apply_processed_label"
	keyTriggerMarkAsRead = "trigger.mark_as_read"
	keyTriggerTimeout    = "trigger.timeout_seconds"

	keyDriveFolderName    = "drive.folder_name"
	keyDriveListPageSize  = "drive.list_page_size"
	keyDriveListTimeout   = "drive.list_timeout_seconds"
	keyDriveUploadTimeout = "drive.upload_timeout_seconds"

	keyReporterTo      = "reporter.to"
	keyReporterSubject = "reporter.subject"
	keyReporterTimeout = "reporter.timeout_seconds"

	keyJournalPath   = "journal.path"
	keyLogVerbose    = "log.verbose"
	keyLogTimeFormat = "log.time_format"
)

// knownKeys lists every key the settings service reads.
var knownKeys = []string{
	keyAppName, keyCompanyName, keyDownloadDir, keyProvider,
	keyRunMode, keyRunUseTrigger,
	keySiteBaseURL, keySiteUsername, keySitePassword, keySiteListPageSize,
	keySiteLoginTimeout, keySiteRequestTimeout, keySiteDownloadTimeout,
	keyGoogleClientSecret, keyGoogleTokenFile,
	keyTriggerSearch, keyTriggerLabel, keyTriggerApplyLabel, keyTriggerMarkAsRead, keyTriggerTimeout,
	keyDriveFolderName, keyDriveListPageSize, keyDriveListTimeout, keyDriveUploadTimeout,
	keyReporterTo, keyReporterSubject, keyReporterTimeout,
	keyJournalPath, keyLogVerbose, keyLogTimeFormat,
}

// intKeys and boolKeys hold non-string settings. Textual values for them
// are converted before they are stored.
var (
	intKeys = []string{
		keySiteListPageSize, keySiteLoginTimeout, keySiteRequestTimeout, keySiteDownloadTimeout,
		keyTriggerTimeout, keyDriveListPageSize, keyDriveListTimeout, keyDriveUploadTimeout,
		keyReporterTimeout,
	}
	boolKeys = []string{
		keyRunUseTrigger, keyTriggerApplyLabel, keyTriggerMarkAsRead, keyLogVerbose,
	}
)

// Keys returns every recognised config key, sorted.
func Keys() []string {
	keys := slices.Clone(knownKeys)
	slices.Sort(keys)
	return keys
}

// IsSecretKey reports whether the key holds a credential that should not be echoed.
func IsSecretKey(key string) bool {
	return key == keySitePassword
}

// SettingsService builds typed settings from the config store,
// with environment variables taking precedence over the file.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are ignored and existing variables are kept.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// EnvKey returns the environment variable that overrides a config key.
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		AppName:     s.getString(keyAppName, d.AppName),
		CompanyName: s.getString(keyCompanyName, d.CompanyName),
		DownloadDir: s.getString(keyDownloadDir, os.TempDir()),
		Provider:    domain.ProviderKind(strings.ToLower(s.getString(keyProvider, d.Provider.String()))),
		Run: domain.RunSettings{
			Mode:       domain.RunMode(s.getString(keyRunMode, d.Run.Mode.String())),
			UseTrigger: s.getBool(keyRunUseTrigger, d.Run.UseTrigger),
		},
		ProviderSite: domain.ProviderSiteSettings{
			BaseURL:         s.getString(keySiteBaseURL, ""),
			Username:        s.getString(keySiteUsername, ""),
			Password:        s.getString(keySitePassword, ""),
			ListPageSize:    s.getInt(keySiteListPageSize, d.ProviderSite.ListPageSize),
			LoginTimeout:    s.getSeconds(keySiteLoginTimeout, d.ProviderSite.LoginTimeout),
			RequestTimeout:  s.getSeconds(keySiteRequestTimeout, d.ProviderSite.RequestTimeout),
			DownloadTimeout: s.getSeconds(keySiteDownloadTimeout, d.ProviderSite.DownloadTimeout),
		},
		Google: domain.GoogleSettings{
			ClientSecretFile: s.getString(keyGoogleClientSecret, ""),
			TokenFile:        s.getString(keyGoogleTokenFile, s.defaultTokenFile()),
		},
		Trigger: domain.TriggerSettings{
			SearchCriteria:      s.getString(keyTriggerSearch, ""),
			ProcessedLabel:      s.getString(keyTriggerLabel, ""),
			ApplyProcessedLabel: s.getBool(keyTriggerApplyLabel, d.Trigger.ApplyProcessedLabel),
			MarkAsRead:          s.getBool(keyTriggerMarkAsRead, d.Trigger.MarkAsRead),
			Timeout:             s.getSeconds(keyTriggerTimeout, d.Trigger.Timeout),
		},
		Drive: domain.DriveSettings{
			FolderName:    s.getString(keyDriveFolderName, d.Drive.FolderName),
			ListPageSize:  s.getInt(keyDriveListPageSize, d.Drive.ListPageSize),
			ListTimeout:   s.getSeconds(keyDriveListTimeout, d.Drive.ListTimeout),
			UploadTimeout: s.getSeconds(keyDriveUploadTimeout, d.Drive.UploadTimeout),
		},
		Reporter: domain.ReporterSettings{
			To:      s.getString(keyReporterTo, ""),
			Subject: s.getString(keyReporterSubject, ""),
			Timeout: s.getSeconds(keyReporterTimeout, d.Reporter.Timeout),
		},
		Journal: domain.JournalSettings{
			Path: s.getString(keyJournalPath, ""),
		},
		Log: domain.LogSettings{
			Verbose:    s.getBool(keyLogVerbose, d.Log.Verbose),
			TimeFormat: s.getString(keyLogTimeFormat, ""),
		},
	}

	return settings, nil
}

// Set stores a single configuration key and persists the file.
// Unknown keys are rejected with ErrInvalidSettings.
func (s *SettingsService) Set(key string, value any) error {
	if !slices.Contains(knownKeys, key) {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidSettings, key)
	}
	value, err := coerce(key, value)
	if err != nil {
		return err
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// coerce converts textual values of integer and boolean keys.
func coerce(key string, value any) (any, error) {
	str, ok := value.(string)
	if !ok {
		return value, nil
	}
	switch {
	case slices.Contains(intKeys, key):
		n, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidSettings, key)
		}
		return int64(n), nil
	case slices.Contains(boolKeys, key):
		b, err := strconv.ParseBool(strings.TrimSpace(str))
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidSettings, key)
		}
		return b, nil
	default:
		return value, nil
	}
}

// Validate checks that every setting required for a run is present.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return *domain.DefaultSettings()
}

// defaultTokenFile places the OAuth token next to a config file on disk.
func (s *SettingsService) defaultTokenFile() string {
	p := s.configStore.Path()
	if !filepath.IsAbs(p) {
		return ""
	}
	return filepath.Join(filepath.Dir(p), defaultTokenFileName)
}

// Helper methods for reading config with defaults.
// The environment wins over the config file, which wins over the default.

func (s *SettingsService) env(key string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	val, ok := s.lookupEnv(EnvKey(key))
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val, ok := s.env(key); ok {
		return val
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val, ok := s.env(key); ok {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if val, ok := s.env(key); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return defaultVal
		}
		return b
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	secs := s.getInt(key, 0)
	if secs == 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
