package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

func TestBuildContext(t *testing.T) {
	got := BuildContext([]domain.RetrievedPassage{
		retrieved("errors", 2, 0.9),
		retrieved("intro", 0, 0.5),
	})

	want := "Source: errors (chunk 2)\ncontent of errors\n\nSource: intro (chunk 0)\ncontent of intro"
	assert.Equal(t, want, got)
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, NoContextPlaceholder, BuildContext(nil))
	assert.Equal(t, "No relevant context found in the documentation.", BuildContext([]domain.RetrievedPassage{}))
}

func TestAnswerer_ZeroPassagesStillGenerates(t *testing.T) {
	llm := &mockLLM{reply: "General answer."}
	a := NewAnswerer(llm, nil, DefaultAnswererConfig())

	text, err := a.Answer(context.Background(), "What is a decorator?", nil)
	require.NoError(t, err)
	assert.Equal(t, "General answer.", text)
	assert.Equal(t, 1, llm.callCount())
	assert.Contains(t, llm.userMessage(), NoContextPlaceholder)
	assert.Contains(t, llm.userMessage(), "Question: What is a decorator?")
}

func TestAnswerer_MessagesAndOptions(t *testing.T) {
	llm := &mockLLM{reply: "answer"}
	a := NewAnswerer(llm, nil, DefaultAnswererConfig())

	_, err := a.Answer(context.Background(), "q?", []domain.RetrievedPassage{retrieved("errors", 0, 1)})
	require.NoError(t, err)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, driven.RoleSystem, llm.messages[0].Role)
	assert.Equal(t, domain.DefaultAnswerSystemPrompt, llm.messages[0].Content)
	assert.Equal(t, driven.RoleUser, llm.messages[1].Role)
	assert.Contains(t, llm.messages[1].Content, "Source: errors (chunk 0)")
	assert.Equal(t, 800, llm.opts.MaxTokens)
	assert.InDelta(t, 0.3, llm.opts.Temperature, 1e-9)
}

func TestAnswerer_PromptStoreOverrides(t *testing.T) {
	llm := &mockLLM{reply: "answer"}
	prompts := &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "Be brief.",
		driven.PromptAnswerUser:   "Q={{question}} C={{context}}",
	}}
	a := NewAnswerer(llm, prompts, DefaultAnswererConfig())

	_, err := a.Answer(context.Background(), "why?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", llm.messages[0].Content)
	assert.Equal(t, "Q=why? C="+NoContextPlaceholder, llm.messages[1].Content)
}

func TestAnswerer_PromptStoreErrorFallsBack(t *testing.T) {
	llm := &mockLLM{reply: "answer"}
	a := NewAnswerer(llm, &mockPromptStore{err: errBoom}, DefaultAnswererConfig())

	_, err := a.Answer(context.Background(), "why?", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnswerSystemPrompt, llm.messages[0].Content)
}

func TestAnswerer_ContextBudgetKeepsFirst(t *testing.T) {
	llm := &mockLLM{reply: "answer"}
	cfg := DefaultAnswererConfig()
	cfg.MaxContextChars = 10
	a := NewAnswerer(llm, nil, cfg)

	passages := []domain.RetrievedPassage{retrieved("first", 0, 1), retrieved("second", 0, 0.5)}
	text, used, err := a.answer(context.Background(), "q", passages)
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Equal(t, 1, used)
	assert.Contains(t, llm.userMessage(), "Source: first")
	assert.NotContains(t, llm.userMessage(), "Source: second")
}

func TestAnswerer_ContextBudgetFits(t *testing.T) {
	cfg := DefaultAnswererConfig()
	cfg.MaxContextChars = 10_000
	a := NewAnswerer(&mockLLM{reply: "ok"}, nil, cfg)

	passages := []domain.RetrievedPassage{retrieved("a", 0, 1), retrieved("b", 0, 1), retrieved("c", 0, 1)}
	_, used, err := a.answer(context.Background(), "q", passages)
	require.NoError(t, err)
	assert.Equal(t, 3, used)
}

func TestAnswerer_Failures(t *testing.T) {
	tests := []struct {
		name string
		llm  *mockLLM
	}{
		{"provider error", &mockLLM{err: errBoom}},
		{"empty completion", &mockLLM{reply: "  \n "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnswerer(tt.llm, nil, DefaultAnswererConfig())
			_, err := a.Answer(context.Background(), "q", nil)

			stage, ok := domain.StageOf(err)
			require.True(t, ok)
			assert.Equal(t, domain.StageGeneration, stage)
			assert.ErrorIs(t, err, domain.ErrGenerationFailure)
		})
	}
}

func TestAnswerer_NoLLM(t *testing.T) {
	_, err := NewAnswerer(nil, nil, DefaultAnswererConfig()).Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.ErrorIs(t, err, domain.ErrGenerationFailure)
}

func TestAnswerer_TrimsCompletion(t *testing.T) {
	a := NewAnswerer(&mockLLM{reply: "\n  Use try/except.  \n"}, nil, DefaultAnswererConfig())
	text, err := a.Answer(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(text, " "))
	assert.Equal(t, "Use try/except.", text)
}
