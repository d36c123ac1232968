package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// paragraphs builds a document whose paragraphs become one passage each.
func paragraphs(key string, paras ...string) domain.Document {
	content := strings.Join(paras, "\n\n")
	if len(content) < domain.MinDocumentLength {
		content += "\n\n" + strings.Repeat("padding ", domain.MinDocumentLength/8+1)
	}
	return domain.Document{SourceKey: key, Content: content}
}

func TestIngest_Run(t *testing.T) {
	embedder := newMockEmbedder(8)
	index := &mockIndex{}
	pacer := &mockPacer{}
	corpus := &mockCorpus{docs: []domain.Document{
		paragraphs("intro", "first paragraph", "second paragraph"),
		{SourceKey: "tiny", Content: "short"},
	}}
	svc := NewIngestService(corpus, &mockPipeline{}, embedder, index, pacer)

	report, err := svc.Run(context.Background(), domain.IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 1, report.SkippedDocuments)
	assert.Equal(t, 3, report.Passages)
	assert.Equal(t, 3, report.Embedded)
	assert.Zero(t, report.EmbeddingFailures)
	assert.Equal(t, domain.UpsertResult{Submitted: 3, Accepted: 3}, report.Upsert)
	assert.Equal(t, 3, pacer.waits)
	require.Len(t, index.upserted, 3)
	assert.Equal(t, "intro_chunk_0", index.upserted[0].ID)
	assert.Len(t, index.upserted[0].Embedding, 8)
}

func TestIngest_EmbeddingFailuresAreDropped(t *testing.T) {
	embedder := newMockEmbedder(8)
	embedder.failOn = "broken"
	embedder.short = "truncated"
	index := &mockIndex{}
	corpus := &mockCorpus{docs: []domain.Document{
		paragraphs("doc", "good text", "broken text", "truncated text"),
	}}
	svc := NewIngestService(corpus, &mockPipeline{}, embedder, index, nil)

	report, err := svc.Run(context.Background(), domain.IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Passages)
	assert.Equal(t, 2, report.Embedded)
	assert.Equal(t, 2, report.EmbeddingFailures)
	assert.Equal(t, 2, report.Upsert.Submitted)
	for _, p := range index.upserted {
		assert.NotContains(t, p.Content, "broken")
		assert.NotContains(t, p.Content, "truncated")
	}
}

func TestIngest_Limit(t *testing.T) {
	embedder := newMockEmbedder(8)
	svc := NewIngestService(
		&mockCorpus{docs: []domain.Document{paragraphs("doc", "a a", "b b", "c c")}},
		&mockPipeline{}, embedder, &mockIndex{}, nil,
	)

	report, err := svc.Run(context.Background(), domain.IngestOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Passages)
	assert.Equal(t, 2, report.Embedded)
	assert.Equal(t, 2, embedder.callCount())
}

func TestIngest_DryRunLeavesIndexAlone(t *testing.T) {
	index := &mockIndex{}
	svc := NewIngestService(
		&mockCorpus{docs: []domain.Document{paragraphs("doc", "a a")}},
		&mockPipeline{}, newMockEmbedder(8), index, nil,
	)

	report, err := svc.Run(context.Background(), domain.IngestOptions{DryRun: true})
	require.NoError(t, err)
	assert.Positive(t, report.Embedded)
	assert.Zero(t, report.Upsert.Submitted)
	assert.Empty(t, index.upserted)
}

func TestIngest_PartialUpsertReported(t *testing.T) {
	index := &mockIndex{rejectEvery: 2}
	svc := NewIngestService(
		&mockCorpus{docs: []domain.Document{paragraphs("doc", "a a", "b b", "c c")}},
		&mockPipeline{}, newMockEmbedder(8), index, nil,
	)

	report, err := svc.Run(context.Background(), domain.IngestOptions{})
	require.NoError(t, err)
	assert.True(t, report.Upsert.Partial())
	assert.Equal(t, 2, report.Upsert.Rejected())
}

func TestIngest_SingleWriter(t *testing.T) {
	svc := NewIngestService(&mockCorpus{}, &mockPipeline{}, newMockEmbedder(8), &mockIndex{}, nil)

	svc.mu.Lock()
	_, err := svc.Run(context.Background(), domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)
	_, _, err = svc.Prepare(context.Background(), domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)
	_, err = svc.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)
	svc.mu.Unlock()

	_, err = svc.Run(context.Background(), domain.IngestOptions{})
	assert.NoError(t, err)
}

func TestIngest_PacerCancellationStops(t *testing.T) {
	embedder := newMockEmbedder(8)
	svc := NewIngestService(
		&mockCorpus{docs: []domain.Document{paragraphs("doc", "a a")}},
		&mockPipeline{}, embedder, &mockIndex{}, &mockPacer{err: context.Canceled},
	)

	_, err := svc.Run(context.Background(), domain.IngestOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, embedder.callCount())
}

func TestIngest_Errors(t *testing.T) {
	t.Run("corpus", func(t *testing.T) {
		svc := NewIngestService(&mockCorpus{err: errBoom}, &mockPipeline{}, newMockEmbedder(8), &mockIndex{}, nil)
		_, err := svc.Run(context.Background(), domain.IngestOptions{})
		assert.ErrorIs(t, err, errBoom)
	})
	t.Run("pipeline", func(t *testing.T) {
		svc := NewIngestService(
			&mockCorpus{docs: []domain.Document{paragraphs("doc", "a a")}},
			&mockPipeline{err: errBoom}, newMockEmbedder(8), &mockIndex{}, nil,
		)
		_, err := svc.Run(context.Background(), domain.IngestOptions{})
		assert.ErrorIs(t, err, errBoom)
	})
	t.Run("upsert", func(t *testing.T) {
		svc := NewIngestService(
			&mockCorpus{docs: []domain.Document{paragraphs("doc", "a a")}},
			&mockPipeline{}, newMockEmbedder(8), &mockIndex{upsertErr: errBoom}, nil,
		)
		_, err := svc.Run(context.Background(), domain.IngestOptions{})
		assert.ErrorIs(t, err, errBoom)
	})
	t.Run("no embedder", func(t *testing.T) {
		svc := NewIngestService(&mockCorpus{}, &mockPipeline{}, nil, &mockIndex{}, nil)
		_, err := svc.Run(context.Background(), domain.IngestOptions{})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestIngest_PrepareThenUpload(t *testing.T) {
	index := &mockIndex{}
	svc := NewIngestService(
		&mockCorpus{docs: []domain.Document{paragraphs("doc", "a a", "b b")}},
		&mockPipeline{}, newMockEmbedder(8), index, nil,
	)

	passages, report, err := svc.Prepare(context.Background(), domain.IngestOptions{})
	require.NoError(t, err)
	assert.Len(t, passages, report.Embedded)
	assert.Empty(t, index.upserted)

	// A passage without an embedding is skipped on upload.
	passages = append(passages, domain.NewPassage("doc", 99, "no vector"))
	result, err := svc.Upload(context.Background(), passages)
	require.NoError(t, err)
	assert.Equal(t, report.Embedded, result.Submitted)
	assert.Equal(t, report.Embedded, result.Accepted)
}
