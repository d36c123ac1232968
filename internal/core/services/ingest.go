package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService rebuilds the index from the corpus.
// Only one run may be active at a time.
type IngestService struct {
	corpus   driven.CorpusSource
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	pacer    driven.Pacer

	mu sync.Mutex
}

// NewIngestService creates an ingest service.
// A nil pacer means embedding calls are issued back to back.
func NewIngestService(
	corpus driven.CorpusSource,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	pacer driven.Pacer,
) *IngestService {
	return &IngestService{
		corpus:   corpus,
		pipeline: pipeline,
		embedder: embedder,
		index:    index,
		pacer:    pacer,
	}
}

// Run chunks, embeds and upserts the whole corpus.
// With opts.DryRun the index is left untouched.
func (s *IngestService) Run(ctx context.Context, opts domain.IngestOptions) (*domain.IngestReport, error) {
	if !s.mu.TryLock() {
		return nil, domain.ErrIngestInProgress
	}
	defer s.mu.Unlock()

	start := time.Now()
	passages, report, err := s.prepare(ctx, opts)
	if err != nil {
		return report, err
	}

	if opts.DryRun {
		logger.Info("Dry run: %d passages ready, index not updated", len(passages))
		report.Duration = time.Since(start)
		return report, nil
	}

	result, err := s.upload(ctx, passages)
	report.Upsert = result
	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}
	return report, nil
}

// Prepare chunks and embeds the corpus without writing to the index.
// Only passages with a valid embedding are returned.
func (s *IngestService) Prepare(ctx context.Context, opts domain.IngestOptions) ([]domain.Passage, *domain.IngestReport, error) {
	if !s.mu.TryLock() {
		return nil, nil, domain.ErrIngestInProgress
	}
	defer s.mu.Unlock()

	start := time.Now()
	passages, report, err := s.prepare(ctx, opts)
	if report != nil {
		report.Duration = time.Since(start)
	}
	return passages, report, err
}

// Upload upserts previously prepared passages.
// Passages without an embedding of the configured dimension are skipped.
func (s *IngestService) Upload(ctx context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	if !s.mu.TryLock() {
		return domain.UpsertResult{}, domain.ErrIngestInProgress
	}
	defer s.mu.Unlock()

	return s.upload(ctx, passages)
}

func (s *IngestService) prepare(ctx context.Context, opts domain.IngestOptions) ([]domain.Passage, *domain.IngestReport, error) {
	report := &domain.IngestReport{}

	if s.corpus == nil {
		return nil, report, fmt.Errorf("corpus source not configured")
	}
	if s.pipeline == nil {
		return nil, report, fmt.Errorf("post-processor pipeline not configured")
	}
	if s.embedder == nil {
		return nil, report, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Chunking")
	docs, err := s.corpus.List(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("list corpus: %w", err)
	}
	report.Documents = len(docs)

	var passages []domain.Passage
	for _, doc := range docs {
		if doc.TooShort() {
			logger.Debug("Skipping %s: %d chars", doc.SourceKey, doc.Length())
			report.SkippedDocuments++
			continue
		}
		chunks, err := s.pipeline.Process(ctx, doc)
		if err != nil {
			return nil, report, fmt.Errorf("process %s: %w", doc.SourceKey, err)
		}
		logger.Debug("%s: %d passages", doc.SourceKey, len(chunks))
		passages = append(passages, chunks...)
	}
	report.Passages = len(passages)
	logger.Info("Chunked %d documents into %d passages (%d skipped)",
		report.Documents-report.SkippedDocuments, report.Passages, report.SkippedDocuments)

	if opts.Limit > 0 && len(passages) > opts.Limit {
		logger.Info("Limiting to the first %d passages", opts.Limit)
		passages = passages[:opts.Limit]
	}

	embedded, err := s.embed(ctx, passages, report)
	if err != nil {
		return nil, report, err
	}
	return embedded, report, nil
}

// embed fills in embeddings one passage at a time, paced.
// Failed or malformed embeddings are counted and the passage is dropped.
func (s *IngestService) embed(ctx context.Context, passages []domain.Passage, report *domain.IngestReport) ([]domain.Passage, error) {
	logger.Section("Embedding")

	dims := s.embedder.Dimensions()
	out := make([]domain.Passage, 0, len(passages))
	for i, p := range passages {
		if s.pacer != nil {
			if err := s.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vector, err := s.embedder.Embed(ctx, p.Content)
		if err != nil {
			if isCancelled(err) {
				return nil, err
			}
			logger.Warn("Embedding %s failed: %v", p.ID, err)
			report.EmbeddingFailures++
			continue
		}
		p.Embedding = vector
		if !usable(p, dims) {
			logger.Warn("Embedding %s has %d dimensions, want %d", p.ID, len(vector), dims)
			report.EmbeddingFailures++
			continue
		}

		out = append(out, p)
		report.Embedded++
		logger.Debug("Embedded %d/%d: %s", i+1, len(passages), p.ID)
	}

	logger.Info("Embedded %d/%d passages", report.Embedded, len(passages))
	return out, nil
}

func (s *IngestService) upload(ctx context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	logger.Section("Upload")

	if s.index == nil {
		return domain.UpsertResult{}, domain.ErrVectorIndexUnavailable
	}

	dims := 0
	if s.embedder != nil {
		dims = s.embedder.Dimensions()
	}
	ready := make([]domain.Passage, 0, len(passages))
	for _, p := range passages {
		if !usable(p, dims) {
			logger.Warn("Skipping %s: no usable embedding", p.ID)
			continue
		}
		ready = append(ready, p)
	}

	if len(ready) == 0 {
		logger.Warn("No passages to upload")
		return domain.UpsertResult{}, nil
	}

	result, err := s.index.Upsert(ctx, ready)
	if err != nil {
		return result, fmt.Errorf("upsert passages: %w", err)
	}
	if result.Partial() {
		logger.Warn("Index accepted %d/%d passages", result.Accepted, result.Submitted)
	} else {
		logger.Info("Index accepted %d/%d passages", result.Accepted, result.Submitted)
	}
	return result, nil
}

// usable reports whether p can be indexed. dims of zero accepts any non-empty embedding.
func usable(p domain.Passage, dims int) bool {
	if dims <= 0 {
		return len(p.Embedding) > 0
	}
	return p.Searchable(dims)
}
