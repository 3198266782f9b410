package driving

import "github.com/custodia-labs/papertrail/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults and
	// environment fallbacks applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single setting by dot key.
	Set(key, value string) error

	// SetAPIKey stores the API key for both embedding and LLM when they use provider.
	SetAPIKey(provider domain.AIProvider, apiKey string) error

	// Validate checks the current settings are complete enough to run.
	Validate() error

	// ValidateProviders pings the configured embedding and LLM providers.
	ValidateProviders() error

	// GetSchedulerConfig returns the scheduler configuration.
	GetSchedulerConfig() domain.SchedulerConfig

	// Keys lists the configured keys.
	Keys() []string
}
