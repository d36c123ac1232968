package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// NoContextPlaceholder replaces the context when retrieval found nothing.
const NoContextPlaceholder = "No relevant context found in the documentation."

// AnswererConfig bounds generation.
type AnswererConfig struct {
	// MaxTokens caps the completion length.
	MaxTokens int

	// Temperature is kept low for grounded answers.
	Temperature float64

	// MaxContextChars caps the assembled context. Zero means unlimited.
	MaxContextChars int
}

// DefaultAnswererConfig returns the reference generation bounds.
func DefaultAnswererConfig() AnswererConfig {
	return AnswererConfig{
		MaxTokens:   domain.DefaultMaxTokens,
		Temperature: domain.DefaultTemperature,
	}
}

// Answerer assembles retrieved passages into a prompt and generates an answer.
type Answerer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	config  AnswererConfig
}

// NewAnswerer creates an answerer. prompts may be nil, in which case the
// built-in prompts are used.
func NewAnswerer(llm driven.LLMService, prompts driven.PromptStore, config AnswererConfig) *Answerer {
	if config.MaxTokens <= 0 {
		config.MaxTokens = domain.DefaultMaxTokens
	}
	return &Answerer{
		llm:     llm,
		prompts: prompts,
		config:  config,
	}
}

// Answer generates an answer grounded on the passages.
// Zero passages still generate, with the placeholder as context.
func (a *Answerer) Answer(ctx context.Context, question string, passages []domain.RetrievedPassage) (string, error) {
	text, _, err := a.answer(ctx, question, passages)
	return text, err
}

// answer also reports how many passages made it into the context.
func (a *Answerer) answer(ctx context.Context, question string, passages []domain.RetrievedPassage) (string, int, error) {
	logger.Section("Generation")

	if a.llm == nil {
		return "", 0, domain.NewStageError(domain.StageGeneration, domain.ErrLLMUnavailable)
	}

	used := a.fitContext(passages)
	contextText := BuildContext(used)
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: a.systemPrompt()},
		{Role: driven.RoleUser, Content: a.userPrompt(contextText, question)},
	}

	logger.Debug("Context: %d passages, %d chars", len(used), utf8.RuneCountInString(contextText))

	start := time.Now()
	text, err := a.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	})
	if err != nil {
		return "", 0, domain.NewStageError(domain.StageGeneration, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0, domain.NewStageError(domain.StageGeneration,
			fmt.Errorf("%w: empty completion", domain.ErrGenerationFailure))
	}
	logger.Debug("Generated %d chars with %s in %s", len(text), a.llm.ModelName(), time.Since(start))

	return text, len(used), nil
}

// fitContext keeps passages in order until the context budget would be exceeded.
// The first passage is always kept.
func (a *Answerer) fitContext(passages []domain.RetrievedPassage) []domain.RetrievedPassage {
	budget := a.config.MaxContextChars
	if budget <= 0 || len(passages) <= 1 {
		return passages
	}

	total := 0
	for i, p := range passages {
		size := utf8.RuneCountInString(formatPassage(p))
		if i > 0 {
			size += 2 // blank-line separator
		}
		if i > 0 && total+size > budget {
			logger.Debug("Context budget %d reached, dropping %d passages", budget, len(passages)-i)
			return passages[:i]
		}
		total += size
	}
	return passages
}

// BuildContext renders passages best-first with their provenance,
// separated by blank lines. Empty input yields NoContextPlaceholder.
func BuildContext(passages []domain.RetrievedPassage) string {
	if len(passages) == 0 {
		return NoContextPlaceholder
	}
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		parts = append(parts, formatPassage(p))
	}
	return strings.Join(parts, "\n\n")
}

func formatPassage(p domain.RetrievedPassage) string {
	return fmt.Sprintf("Source: %s (chunk %d)\n%s", p.SourceKey, p.ChunkIndex, p.Content)
}

func (a *Answerer) systemPrompt() string {
	return a.loadPrompt(driven.PromptAnswerSystem, domain.DefaultAnswerSystemPrompt)
}

func (a *Answerer) userPrompt(contextText, question string) string {
	tmpl := a.loadPrompt(driven.PromptAnswerUser, domain.DefaultAnswerUserPrompt)
	return strings.NewReplacer("{{context}}", contextText, "{{question}}", question).Replace(tmpl)
}

func (a *Answerer) loadPrompt(name, fallback string) string {
	if a.prompts == nil {
		return fallback
	}
	p, err := a.prompts.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		if err != nil {
			logger.Warn("Loading prompt %s: %v, using built-in", name, err)
		}
		return fallback
	}
	return p
}
