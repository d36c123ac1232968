// Package azure provides an embedding service adapter for Azure OpenAI
// deployments, built on langchaingo's OpenAI client in Azure mode.
package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/custodia-labs/ragdocs/internal/adapters/driven/providerhttp"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// pingText is embedded by Ping. Azure has no key-only probe for deployments.
const pingText = "ping"

// Config holds configuration for an Azure OpenAI embedding deployment.
type Config struct {
	// Endpoint is the resource URL, e.g. https://myres.openai.azure.com.
	Endpoint string

	// APIKey is the resource key.
	APIKey string

	// Deployment is the embedding deployment name.
	Deployment string

	// APIVersion is the data-plane API version (default: 2024-02-01).
	APIVersion string

	// Dimensions is the vector size the deployment produces.
	Dimensions int
}

// EmbeddingService generates embeddings through an Azure OpenAI deployment.
type EmbeddingService struct {
	embedder   embeddings.Embedder
	deployment string
	dimensions int
}

// NewEmbeddingService creates a new Azure OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("azure: API key is required")
	}
	if cfg.Deployment == "" {
		cfg.Deployment = domain.DefaultEmbeddingModels()[domain.AIProviderAzure]
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = domain.DefaultAzureAPIVersion
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.DefaultDimensions
	}

	client, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL(strings.TrimRight(cfg.Endpoint, "/")),
		openai.WithToken(cfg.APIKey),
		openai.WithAPIVersion(cfg.APIVersion),
		openai.WithModel(cfg.Deployment),
		openai.WithEmbeddingModel(cfg.Deployment),
	)
	if err != nil {
		return nil, fmt.Errorf("azure: create client: %w", err)
	}

	// Passages keep their newlines; code blocks depend on them.
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, fmt.Errorf("azure: create embedder: %w", err)
	}

	return newWithEmbedder(embedder, cfg.Deployment, cfg.Dimensions), nil
}

func newWithEmbedder(embedder embeddings.Embedder, deployment string, dimensions int) *EmbeddingService {
	return &EmbeddingService{
		embedder:   embedder,
		deployment: deployment,
		dimensions: dimensions,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, providerhttp.Classify(ctx, "azure", domain.ErrEmbeddingFailure, err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: azure: no embedding returned", domain.ErrEmbeddingFailure)
	}
	return v, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vs, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, providerhttp.Classify(ctx, "azure", domain.ErrEmbeddingFailure, err)
	}
	if len(vs) != len(texts) {
		return nil, fmt.Errorf("%w: azure: got %d embeddings for %d inputs",
			domain.ErrEmbeddingFailure, len(vs), len(texts))
	}
	return vs, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the deployment name.
func (s *EmbeddingService) ModelName() string {
	return s.deployment
}

// Ping embeds a one-word probe.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.embedder.EmbedQuery(ctx, pingText); err != nil {
		return providerhttp.Classify(ctx, "azure", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
