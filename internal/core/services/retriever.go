package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrieveService = (*Retriever)(nil)

// Retriever turns a question into ranked passages.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetriever creates a retriever over an embedder and a vector index.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
	}
}

// Retrieve embeds the question and searches the index for the topK nearest passages.
// Provider order is returned unchanged. An empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) ([]domain.RetrievedPassage, error) {
	logger.Section("Retrieval")

	if strings.TrimSpace(question) == "" {
		return nil, domain.NewValidationError("question", "question must not be empty")
	}
	if err := domain.ValidateTopK(topK); err != nil {
		return nil, err
	}
	if r.embedder == nil {
		return nil, domain.NewStageError(domain.StageEmbedding, domain.ErrEmbeddingUnavailable)
	}
	if r.index == nil {
		return nil, domain.NewStageError(domain.StageSearch, domain.ErrVectorIndexUnavailable)
	}

	start := time.Now()
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		logger.Debug("Question embedding failed: %v", err)
		return nil, domain.NewStageError(domain.StageEmbedding, err)
	}
	if len(vector) == 0 {
		return nil, domain.NewStageError(domain.StageEmbedding,
			fmt.Errorf("%w: empty embedding", domain.ErrEmbeddingFailure))
	}
	logger.Debug("Embedded question with %s (%d dims) in %s", r.embedder.ModelName(), len(vector), time.Since(start))

	start = time.Now()
	passages, err := r.index.Search(ctx, vector, topK)
	if err != nil {
		logger.Debug("Vector search failed: %v", err)
		return nil, domain.NewStageError(domain.StageSearch, err)
	}
	logger.Debug("Vector search returned %d/%d passages in %s", len(passages), topK, time.Since(start))

	if len(passages) > topK {
		passages = passages[:topK]
	}
	if passages == nil {
		passages = []domain.RetrievedPassage{}
	}
	for i, p := range passages {
		logger.Debug("  %d. %s (chunk %d) score=%.4f", i+1, p.SourceKey, p.ChunkIndex, p.Score)
	}

	return passages, nil
}

// isCancelled reports whether err is a context cancellation rather than a provider fault.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
