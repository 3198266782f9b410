package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papertrail/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papertrail/internal/core/domain"
)

// newTestSettings returns a settings service with no environment.
func newTestSettings(values map[string]any) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore(values)
	svc := NewSettingsService(store, nil)
	svc.getenv = func(string) string { return "" }
	return svc, store
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	svc, _ := newTestSettings(nil)

	settings, err := svc.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
}

func TestSettingsService_Get_StoredValues(t *testing.T) {
	svc, _ := newTestSettings(map[string]any{
		"embedding.provider":     "ollama",
		"llm.provider":           "ollama",
		"llm.model":              "mistral",
		"storage.backend":        "redis",
		"storage.redis_db":       int64(2),
		"arxiv.max_results":      int64(8),
		"arxiv.request_interval": "5s",
		"ingest.batch_size":      int64(100),
		"server.addr":            ":8080",
	})

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	// Model default follows the provider.
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "mistral", settings.LLM.Model)
	assert.Equal(t, domain.StorageRedis, settings.Storage.Backend)
	assert.Equal(t, 2, settings.Storage.RedisDB)
	assert.Equal(t, 8, settings.Arxiv.MaxResults)
	assert.Equal(t, 5*time.Second, settings.Arxiv.RequestInterval)
	assert.Equal(t, 100, settings.Ingest.BatchSize)
	assert.Equal(t, ":8080", settings.Server.Addr)
}

func TestSettingsService_Get_InvalidValuesFallBack(t *testing.T) {
	svc, _ := newTestSettings(map[string]any{
		"embedding.provider":     "anthropic",
		"storage.backend":        "postgres",
		"arxiv.request_interval": "soon",
	})

	settings, err := svc.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
	assert.Equal(t, defaults.Arxiv.RequestInterval, settings.Arxiv.RequestInterval)
}

func TestSettingsService_Get_EnvAPIKeyFallback(t *testing.T) {
	svc, _ := newTestSettings(map[string]any{"llm.api_key": "sk-config"})
	svc.getenv = func(key string) string {
		if key == EnvOpenAIKey {
			return "sk-env"
		}
		return ""
	}

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)
	// A configured key wins over the environment.
	assert.Equal(t, "sk-config", settings.LLM.APIKey)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  any
	}{
		{"llm.model", "gpt-4o", "gpt-4o"},
		{"embedding.provider", "ollama", "ollama"},
		{"storage.backend", "memory", "memory"},
		{"ingest.batch_size", "250", int64(250)},
		{"scheduler.enabled", "false", false},
		{"scheduler.embedding_backfill.interval", "90m", "1h30m0s"},
		{"scheduler.topic_ingest.queries", "dark matter, , protein folding", []string{"dark matter", "protein folding"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			svc, store := newTestSettings(nil)

			require.NoError(t, svc.Set(tt.key, tt.value))

			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"unknown.key", "x"},
		{"embedding.provider", "anthropic"},
		{"storage.backend", "postgres"},
		{"ingest.batch_size", "many"},
		{"ingest.batch_size", "-1"},
		{"scheduler.enabled", "maybe"},
		{"arxiv.request_interval", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			svc, store := newTestSettings(nil)

			err := svc.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestSettingsService_SetAPIKey(t *testing.T) {
	svc, store := newTestSettings(map[string]any{"embedding.provider": "ollama"})

	require.NoError(t, svc.SetAPIKey(domain.AIProviderOpenAI, "sk-test"))

	assert.Equal(t, "sk-test", store.GetString("llm.api_key"))
	assert.Empty(t, store.GetString("embedding.api_key"))
}

func TestSettingsService_SetAPIKey_Invalid(t *testing.T) {
	svc, _ := newTestSettings(map[string]any{"embedding.provider": "ollama", "llm.provider": "ollama"})

	assert.ErrorIs(t, svc.SetAPIKey(domain.AIProviderOllama, "k"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetAPIKey(domain.AIProviderOpenAI, " "), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetAPIKey(domain.AIProviderOpenAI, "sk"), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	svc, _ := newTestSettings(nil)

	err := svc.Validate()

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	svc, _ = newTestSettings(map[string]any{"embedding.provider": "ollama", "llm.provider": "ollama"})
	assert.NoError(t, svc.Validate())
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	store := memory.NewConfigStore()

	assert.NoError(t, NewSettingsService(store, nil).ValidateProviders())
	assert.NoError(t, NewSettingsService(store, &mockAIValidator{}).ValidateProviders())

	err := NewSettingsService(store, &mockAIValidator{llmErr: errMock}).ValidateProviders()
	assert.ErrorIs(t, err, errMock)
}

func TestSettingsService_Keys(t *testing.T) {
	svc, _ := newTestSettings(nil)

	keys := svc.Keys()

	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, "embedding.provider")
	assert.Contains(t, keys, "scheduler.topic_ingest.queries")
}

func TestSettingsService_GetSchedulerConfig(t *testing.T) {
	svc, _ := newTestSettings(nil)
	cfg := svc.GetSchedulerConfig()
	assert.Equal(t, domain.DefaultSchedulerConfig(), cfg)

	svc, _ = newTestSettings(map[string]any{
		"scheduler.enabled":                     false,
		"scheduler.embedding_backfill.interval": "5m",
		"scheduler.topic_ingest.enabled":        true,
		"scheduler.topic_ingest.queries":        []any{"dark matter"},
	})
	cfg = svc.GetSchedulerConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.GetTaskConfig(domain.TaskIDEmbeddingBackfill).Interval)
	assert.True(t, cfg.GetTaskConfig(domain.TaskIDTopicIngest).Enabled)
	assert.Equal(t, []string{"dark matter"}, cfg.IngestQueries)
}
