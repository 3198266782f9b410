package driven

import "github.com/custodia-labs/papertrail/internal/core/domain"

// AIConfigValidator checks provider settings by contacting the provider.
type AIConfigValidator interface {
	// ValidateEmbedding returns nil if the configuration works or is not set.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM returns nil if the configuration works or is not set.
	ValidateLLM(config *domain.LLMSettings) error
}
