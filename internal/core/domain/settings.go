package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StorageBackend selects the paper store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists records in a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps records in process memory only.
	StorageMemory StorageBackend = "memory"

	// StorageRedis stores records in Redis with a RediSearch vector index.
	StorageRedis StorageBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageMemory, StorageRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// StorageSettings holds paper store configuration.
type StorageSettings struct {
	// Backend selects the store implementation.
	Backend StorageBackend

	// DataDir is the SQLite data directory (default: ~/.papertrail/data).
	DataDir string

	// RedisAddr is the Redis host:port.
	RedisAddr string

	// RedisPassword is the optional Redis password.
	RedisPassword string

	// RedisDB is the Redis logical database.
	RedisDB int

	// RedisIndex is the RediSearch index name.
	RedisIndex string
}

// ArxivSettings holds literature source configuration.
type ArxivSettings struct {
	// BaseURL is the arXiv export API root.
	BaseURL string

	// MaxResults is the number of papers fetched per topic.
	MaxResults int

	// RequestInterval is the minimum spacing between API requests.
	RequestInterval time.Duration
}

// IngestSettings holds ingestion pipeline configuration.
type IngestSettings struct {
	BatchSize      int
	MaxChunkLength int
	Concurrency    int
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Storage   StorageSettings
	Arxiv     ArxivSettings
	Ingest    IngestSettings
	Server    ServerSettings
}

// IngestOptions converts the ingest and arXiv settings into pipeline options.
func (s AppSettings) IngestOptions() IngestOptions {
	return IngestOptions{
		MaxResults:  s.Arxiv.MaxResults,
		BatchSize:   s.Ingest.BatchSize,
		Concurrency: s.Ingest.Concurrency,
	}.WithDefaults()
}

// DefaultAppSettings returns settings with sensible defaults.
// Providers default to OpenAI; the API key must come from config or OPENAI_API_KEY.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Storage: StorageSettings{
			Backend:    StorageSQLite,
			RedisAddr:  "localhost:6379",
			RedisIndex: "papertrail",
		},
		Arxiv: ArxivSettings{
			BaseURL:         "http://export.arxiv.org",
			MaxResults:      DefaultMaxResults,
			RequestInterval: 3 * time.Second,
		},
		Ingest: IngestSettings{
			BatchSize:      DefaultBatchSize,
			MaxChunkLength: DefaultMaxChunkLength,
			Concurrency:    DefaultIngestConcurrency,
		},
		Server: ServerSettings{
			Addr: ":3000",
		},
	}
}

// AllProviders returns providers that support both embeddings and chat.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-ada-002",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-3.5-turbo",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
