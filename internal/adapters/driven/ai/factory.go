// Package ai builds embedding and LLM services from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	azureembed "github.com/custodia-labs/ragdocs/internal/adapters/driven/embedding/azure"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/custodia-labs/ragdocs/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragdocs/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/ragdocs/internal/adapters/driven/llm/anthropic"
	azurellm "github.com/custodia-labs/ragdocs/internal/adapters/driven/llm/azure"
	ollamallm "github.com/custodia-labs/ragdocs/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ragdocs/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/resilient"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

const fixHint = "Run 'ragdocs settings wizard' to fix"

// Services holds the providers assembled for one process.
type Services struct {
	// Embedding serves ingestion and health probes. It is never cached.
	Embedding driven.EmbeddingService

	// QueryEmbedding embeds questions: Embedding behind the Redis query
	// cache when one is configured, otherwise Embedding itself.
	QueryEmbedding driven.EmbeddingService

	LLM driven.LLMService
}

// Close releases all provider resources.
func (s *Services) Close() {
	// The cache closes the embedder it wraps.
	switch {
	case s.QueryEmbedding != nil:
		s.QueryEmbedding.Close()
	case s.Embedding != nil:
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
}

// Build creates both providers from application settings and applies the
// configured decorators: retries when resilience is enabled, and the Redis
// cache on the query embedder when a cache address is set.
// Unconfigured providers are left nil.
func Build(settings *domain.AppSettings) (*Services, error) {
	out := &Services{}

	emb, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		if emb != nil {
			emb.Close()
		}
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	if settings.Resilience.Enabled {
		policy := resilient.PolicyFromSettings(settings.Resilience)
		if emb != nil {
			emb = resilient.NewEmbeddingService(emb, policy)
		}
		if llm != nil {
			llm = resilient.NewLLMService(llm, policy)
		}
	}

	out.Embedding = emb
	out.QueryEmbedding = emb
	out.LLM = llm

	// Cache outside the retry decorator so hits never wait on backoff.
	if emb != nil && settings.Cache.Enabled() {
		logger.Debug("query embedding cache enabled at %s", settings.Cache.RedisAddr)
		out.QueryEmbedding = cache.NewEmbeddingService(emb, cache.NewClient(settings.Cache), settings.Cache.TTL)
	}
	return out, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates a service and pings it.
// Used by the settings wizard to check credentials before saving.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig creates a service and pings it.
// Used by the settings wizard to check credentials before saving.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service for the configured provider.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use azure, openai or ollama")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	switch settings.Provider {
	case domain.AIProviderAzure:
		return azureembed.NewEmbeddingService(azureembed.Config{
			Endpoint:   settings.BaseURL,
			APIKey:     settings.APIKey,
			Deployment: settings.Model,
			APIVersion: settings.APIVersion,
			Dimensions: dimensions,
		})

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service for the configured provider.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderAzure:
		return azurellm.NewLLMService(azurellm.Config{
			Endpoint:   settings.BaseURL,
			APIKey:     settings.APIKey,
			Deployment: settings.Model,
			APIVersion: settings.APIVersion,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
