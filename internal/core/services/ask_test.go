package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/postprocessors"
	"github.com/custodia-labs/ragdocs/internal/postprocessors/chunker"
)

func repeat(sentence string, n int) string {
	return strings.TrimSpace(strings.Repeat(sentence+" ", n))
}

func testCorpus() []domain.Document {
	return []domain.Document{
		{SourceKey: "errors", Content: repeat("Python errors and exceptions are handled with try except blocks raising exceptions when errors occur.", 12)},
		{SourceKey: "datastructures", Content: repeat("Lists dictionaries tuples sets store collections of values in memory.", 12)},
		{SourceKey: "interpreter", Content: repeat("The interpreter reads source code from files or an interactive prompt.", 12)},
		{SourceKey: "stub", Content: "Too short to index."},
	}
}

type askFixture struct {
	embedder *mockEmbedder
	index    *memory.VectorIndex
	llm      *mockLLM
	ask      *AskService
}

func newIndexedFixture(t *testing.T) *askFixture {
	t.Helper()
	ctx := context.Background()

	embedder := newMockEmbedder(256)
	index := memory.NewVectorIndex(256)
	c, err := chunker.New(chunker.WithChunkSize(40), chunker.WithOverlap(5))
	require.NoError(t, err)

	ingest := NewIngestService(&mockCorpus{docs: testCorpus()}, postprocessors.NewPipeline(c), embedder, index, nil)
	report, err := ingest.Run(ctx, domain.IngestOptions{})
	require.NoError(t, err)
	require.Positive(t, report.Upsert.Accepted)

	llm := &mockLLM{reply: "Use try and except to handle exceptions."}
	return &askFixture{
		embedder: embedder,
		index:    index,
		llm:      llm,
		ask: NewAskService(
			NewRetriever(embedder, index),
			NewAnswerer(llm, nil, DefaultAnswererConfig()),
		),
	}
}

func TestAsk_AnswersFromCorpus(t *testing.T) {
	f := newIndexedFixture(t)

	answer, err := f.ask.Ask(context.Background(), "How are errors and exceptions handled?", 3)
	require.NoError(t, err)

	assert.Equal(t, "How are errors and exceptions handled?", answer.Question)
	assert.NotEmpty(t, answer.Text)
	assert.LessOrEqual(t, answer.SourcesUsed, 3)
	assert.Len(t, answer.Sources, answer.SourcesUsed)

	corpus := map[string]bool{"errors": true, "datastructures": true, "interpreter": true}
	for _, s := range answer.Sources {
		assert.True(t, corpus[s.SourceKey], "unexpected source %s", s.SourceKey)
		assert.LessOrEqual(t, len([]rune(s.Preview)), domain.PreviewLength)
	}
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "errors", answer.Sources[0].SourceKey)
	assert.Contains(t, f.llm.userMessage(), "Source: errors (chunk ")
}

func TestAsk_EmptyQuestionMakesNoProviderCalls(t *testing.T) {
	embedder := newMockEmbedder(8)
	index := &mockIndex{}
	llm := &mockLLM{reply: "x"}
	ask := NewAskService(NewRetriever(embedder, index), NewAnswerer(llm, nil, DefaultAnswererConfig()))

	_, err := ask.Ask(context.Background(), "", 3)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.CategoryValidation, domain.CategoryOf(err))
	assert.Zero(t, embedder.callCount())
	assert.Zero(t, index.searchCalls)
	assert.Zero(t, llm.callCount())
}

func TestAsk_Validation(t *testing.T) {
	ask := NewAskService(NewRetriever(newMockEmbedder(8), &mockIndex{}), NewAnswerer(&mockLLM{reply: "x"}, nil, DefaultAnswererConfig()))

	tests := []struct {
		name     string
		question string
		max      int
		field    string
	}{
		{"blank", "   ", 3, "question"},
		{"too long", strings.Repeat("a", domain.MaxQuestionLength+1), 3, "question"},
		{"zero results", "q", 0, "max_results"},
		{"too many results", "q", 11, "max_results"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ask.Ask(context.Background(), tt.question, tt.max)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestAsk_MaxLengthQuestionAccepted(t *testing.T) {
	ask := NewAskService(NewRetriever(newMockEmbedder(8), &mockIndex{}), NewAnswerer(&mockLLM{reply: "x"}, nil, DefaultAnswererConfig()))

	_, err := ask.Ask(context.Background(), strings.Repeat("é", domain.MaxQuestionLength), 1)
	assert.NoError(t, err)
}

func TestAsk_EmptySearchStillAnswers(t *testing.T) {
	llm := &mockLLM{reply: "General knowledge answer."}
	ask := NewAskService(NewRetriever(newMockEmbedder(8), &mockIndex{}), NewAnswerer(llm, nil, DefaultAnswererConfig()))

	answer, err := ask.Ask(context.Background(), "What is a metaclass?", 3)
	require.NoError(t, err)

	assert.Equal(t, "General knowledge answer.", answer.Text)
	assert.Zero(t, answer.SourcesUsed)
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
	assert.Contains(t, llm.userMessage(), NoContextPlaceholder)
}

func TestAsk_ProviderFailuresArePublic(t *testing.T) {
	tests := []struct {
		name     string
		embedErr error
		search   error
		llmErr   error
		category domain.ErrorCategory
		sentinel error
	}{
		{"embedding", errors.New("azure 429: quota for key sk-123"), nil, nil, domain.CategoryEmbedding, domain.ErrEmbeddingFailure},
		{"search", nil, errors.New("index python-docs-index missing"), nil, domain.CategorySearch, domain.ErrSearchFailure},
		{"generation", nil, nil, errors.New("deployment gpt-35 not found"), domain.CategoryGeneration, domain.ErrGenerationFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := newMockEmbedder(8)
			embedder.err = tt.embedErr
			index := &mockIndex{searchErr: tt.search}
			llm := &mockLLM{reply: "x", err: tt.llmErr}
			ask := NewAskService(NewRetriever(embedder, index), NewAnswerer(llm, nil, DefaultAnswererConfig()))

			answer, err := ask.Ask(context.Background(), "question", 3)
			assert.Nil(t, answer)

			var perr *domain.PublicError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.category, perr.Category)
			assert.Equal(t, domain.UnavailableMessage, err.Error())
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestAsk_EmbeddingFailureSkipsSearchAndGeneration(t *testing.T) {
	embedder := newMockEmbedder(8)
	embedder.err = errBoom
	index := &mockIndex{}
	llm := &mockLLM{reply: "x"}
	ask := NewAskService(NewRetriever(embedder, index), NewAnswerer(llm, nil, DefaultAnswererConfig()))

	_, err := ask.Ask(context.Background(), "question", 3)
	require.Error(t, err)
	assert.Zero(t, index.searchCalls)
	assert.Zero(t, llm.callCount())
}
