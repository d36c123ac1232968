// Package azure provides an LLM service adapter for Azure OpenAI chat
// deployments, built on langchaingo's OpenAI client in Azure mode.
package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/custodia-labs/ragdocs/internal/adapters/driven/providerhttp"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Config holds configuration for an Azure OpenAI chat deployment.
type Config struct {
	// Endpoint is the resource URL, e.g. https://myres.openai.azure.com.
	Endpoint string

	// APIKey is the resource key.
	APIKey string

	// Deployment is the chat deployment name.
	Deployment string

	// APIVersion is the data-plane API version (default: 2024-02-01).
	APIVersion string
}

// contentGenerator is the part of llms.Model this adapter needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LLMService completes chats through an Azure OpenAI deployment.
type LLMService struct {
	model      contentGenerator
	deployment string
}

// NewLLMService creates a new Azure OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("azure: API key is required")
	}
	if cfg.Deployment == "" {
		cfg.Deployment = domain.DefaultLLMModels()[domain.AIProviderAzure]
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = domain.DefaultAzureAPIVersion
	}

	client, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL(strings.TrimRight(cfg.Endpoint, "/")),
		openai.WithToken(cfg.APIKey),
		openai.WithAPIVersion(cfg.APIVersion),
		openai.WithModel(cfg.Deployment),
	)
	if err != nil {
		return nil, fmt.Errorf("azure: create client: %w", err)
	}

	return &LLMService{model: client, deployment: cfg.Deployment}, nil
}

// Generate produces a completion for a single user prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.ChatOptions) (string, error) {
	return s.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}, opts)
}

// Chat completes a role-tagged conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}

	resp, err := s.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", providerhttp.Classify(ctx, "azure", domain.ErrGenerationFailure, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: azure: no choices returned", domain.ErrGenerationFailure)
	}
	return resp.Choices[0].Content, nil
}

// ModelName returns the deployment name.
func (s *LLMService) ModelName() string {
	return s.deployment
}

// Ping requests a one-token completion.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "ping")},
		llms.WithMaxTokens(1),
	)
	if err != nil {
		return providerhttp.Classify(ctx, "azure", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func messageType(role string) llms.ChatMessageType {
	switch role {
	case driven.RoleSystem:
		return llms.ChatMessageTypeSystem
	case driven.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
