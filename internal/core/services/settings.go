package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvOpenAIKey is consulted when no OpenAI API key is configured.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvOpenAIKey = "OPENAI_API_KEY"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"

	keyStorageBackend = "storage.backend"
	keyStorageDataDir = "storage.data_dir"
	keyRedisAddr      = "storage.redis_addr"
	keyRedisPassword  = "storage.redis_password"
	keyRedisDB        = "storage.redis_db"
	keyRedisIndex     = "storage.redis_index"

	keyArxivBaseURL  = "arxiv.base_url"
	keyArxivMax      = "arxiv.max_results"
	keyArxivInterval = "arxiv.request_interval"

	keyIngestBatch       = "ingest.batch_size"
	keyIngestChunkLength = "ingest.max_chunk_length"
	keyIngestConcurrency = "ingest.concurrency"

	keyServerAddr = "server.addr"

	keySchedulerEnabled  = "scheduler.enabled"
	keyBackfillEnabled   = "scheduler.embedding_backfill.enabled"
	keyBackfillInterval  = "scheduler.embedding_backfill.interval"
	keyTopicIngestEnable = "scheduler.topic_ingest.enabled"
	keyTopicIngestEvery  = "scheduler.topic_ingest.interval"
	keyTopicIngestQuery  = "scheduler.topic_ingest.queries"
)

// valueKind describes how a setting's string form is parsed.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindDuration
	kindProvider
	kindBackend
	kindList
)

var settingKinds = map[string]valueKind{
	keyEmbedProvider:     kindProvider,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyLLMProvider:       kindProvider,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyStorageBackend:    kindBackend,
	keyStorageDataDir:    kindString,
	keyRedisAddr:         kindString,
	keyRedisPassword:     kindString,
	keyRedisDB:           kindInt,
	keyRedisIndex:        kindString,
	keyArxivBaseURL:      kindString,
	keyArxivMax:          kindInt,
	keyArxivInterval:     kindDuration,
	keyIngestBatch:       kindInt,
	keyIngestChunkLength: kindInt,
	keyIngestConcurrency: kindInt,
	keyServerAddr:        kindString,
	keySchedulerEnabled:  kindBool,
	keyBackfillEnabled:   kindBool,
	keyBackfillInterval:  kindDuration,
	keyTopicIngestEnable: kindBool,
	keyTopicIngestEvery:  kindDuration,
	keyTopicIngestQuery:  kindList,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. Unset keys take their
// defaults and an empty OpenAI key falls back to OPENAI_API_KEY.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Storage: domain.StorageSettings{
			Backend:       s.getBackend(defaults.Storage.Backend),
			DataDir:       s.configStore.GetString(keyStorageDataDir),
			RedisAddr:     s.getString(keyRedisAddr, defaults.Storage.RedisAddr),
			RedisPassword: s.configStore.GetString(keyRedisPassword),
			RedisDB:       s.configStore.GetInt(keyRedisDB),
			RedisIndex:    s.getString(keyRedisIndex, defaults.Storage.RedisIndex),
		},
		Arxiv: domain.ArxivSettings{
			BaseURL:         s.getString(keyArxivBaseURL, defaults.Arxiv.BaseURL),
			MaxResults:      s.getInt(keyArxivMax, defaults.Arxiv.MaxResults),
			RequestInterval: s.getDuration(keyArxivInterval, defaults.Arxiv.RequestInterval),
		},
		Ingest: domain.IngestSettings{
			BatchSize:      s.getInt(keyIngestBatch, defaults.Ingest.BatchSize),
			MaxChunkLength: s.getInt(keyIngestChunkLength, defaults.Ingest.MaxChunkLength),
			Concurrency:    s.getInt(keyIngestConcurrency, defaults.Ingest.Concurrency),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	// Model defaults follow the chosen provider, not the global default.
	settings.Embedding.Model = s.getString(keyEmbedModel,
		domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel,
		domain.DefaultLLMModels()[settings.LLM.Provider])

	if envKey := s.getenv(EnvOpenAIKey); envKey != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = envKey
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI && settings.LLM.APIKey == "" {
			settings.LLM.APIKey = envKey
		}
	}

	return settings, nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	return s.configStore.Set(key, parsed)
}

func parseSetting(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", value)
		}
		if n < 0 {
			return nil, fmt.Errorf("must not be negative: %d", n)
		}
		return int64(n), nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", value)
		}
		return b, nil
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		if d <= 0 {
			return nil, fmt.Errorf("must be positive: %s", value)
		}
		return d.String(), nil
	case kindProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return p.String(), nil
	case kindBackend:
		b := domain.StorageBackend(value)
		if !b.IsValid() {
			return nil, fmt.Errorf("unknown storage backend %q", value)
		}
		return b.String(), nil
	case kindList:
		var items []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items, nil
	default:
		return value, nil
	}
}

// SetAPIKey stores the key for whichever of embedding and LLM use provider.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, apiKey string) error {
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%w: provider %s does not use an API key", domain.ErrInvalidInput, provider)
	}
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("%w: API key is empty", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	stored := false
	if settings.Embedding.Provider == provider {
		if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
			return err
		}
		stored = true
	}
	if settings.LLM.Provider == provider {
		if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
			return err
		}
		stored = true
	}
	if !stored {
		return fmt.Errorf("%w: provider %s is not configured for embedding or LLM",
			domain.ErrInvalidInput, provider)
	}
	return nil
}

// Validate checks that both providers are configured and the numeric
// settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: LLM provider %q is not configured",
			domain.ErrLLMUnavailable, settings.LLM.Provider))
	}
	if settings.Ingest.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: ingest.batch_size must be positive", domain.ErrInvalidInput))
	}
	if settings.Ingest.MaxChunkLength <= 0 {
		errs = append(errs, fmt.Errorf("%w: ingest.max_chunk_length must be positive", domain.ErrInvalidInput))
	}
	return errors.Join(errs...)
}

// ValidateProviders pings the configured providers.
func (s *SettingsService) ValidateProviders() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return errors.Join(
		s.aiValidator.ValidateEmbedding(&settings.Embedding),
		s.aiValidator.ValidateLLM(&settings.LLM),
	)
}

// Keys returns every settable key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDEmbeddingBackfill: "embedding_backfill",
		domain.TaskIDTopicIngest:       "topic_ingest",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."
		taskCfg := defaults.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}
		taskCfg.Interval = s.getDuration(prefix+"interval", taskCfg.Interval)

		defaults.TaskConfigs[taskID] = taskCfg
	}

	defaults.IngestQueries = s.configStore.GetStringSlice(keyTopicIngestQuery)
	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
