package driving

import "github.com/custodia-labs/payslip-saver/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the current settings with defaults and environment overrides applied.
	Get() (*domain.Settings, error)

	// Set stores a single configuration key.
	Set(key string, value any) error

	// Validate checks that every setting required for a run is present.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
