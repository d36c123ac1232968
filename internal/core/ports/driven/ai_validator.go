package driven

import "github.com/custodia-labs/ragdocs/internal/core/domain"

// AIConfigValidator checks provider credentials by reaching the provider.
// Used by the settings wizard before saving.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider described by config.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the LLM provider described by config.
	ValidateLLM(config *domain.LLMSettings) error
}
