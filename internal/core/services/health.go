package services

import (
	"context"
	"time"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// Component names reported by the health check.
const (
	HealthEmbedding   = "embedding"
	HealthVectorIndex = "vector_index"
	HealthLLM         = "llm"
)

// HealthService probes the external services a question depends on.
type HealthService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	llm      driven.LLMService
}

// NewHealthService creates a health checker. Nil services report unhealthy.
func NewHealthService(embedder driven.EmbeddingService, index driven.VectorIndex, llm driven.LLMService) *HealthService {
	return &HealthService{
		embedder: embedder,
		index:    index,
		llm:      llm,
	}
}

// Check runs every probe in turn. Probe errors are reported, not returned.
func (s *HealthService) Check(ctx context.Context) domain.HealthReport {
	return domain.NewHealthReport(
		s.checkEmbedding(ctx),
		s.checkIndex(ctx),
		s.checkLLM(ctx),
	)
}

func (s *HealthService) checkEmbedding(ctx context.Context) domain.ComponentHealth {
	h := domain.ComponentHealth{Service: HealthEmbedding}
	if s.embedder == nil {
		h.Error = domain.ErrEmbeddingUnavailable.Error()
		return h
	}
	start := time.Now()
	vector, err := s.embedder.Embed(ctx, domain.HealthProbeText)
	h.LatencyMS = time.Since(start).Milliseconds()
	switch {
	case err != nil:
		logger.Warn("Embedding health probe failed: %v", err)
		h.Error = err.Error()
	case len(vector) == 0:
		h.Error = "empty embedding"
	default:
		h.Healthy = true
	}
	return h
}

func (s *HealthService) checkIndex(ctx context.Context) domain.ComponentHealth {
	h := domain.ComponentHealth{Service: HealthVectorIndex}
	if s.index == nil {
		h.Error = domain.ErrVectorIndexUnavailable.Error()
		return h
	}
	start := time.Now()
	stats, err := s.index.Stats(ctx)
	h.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		logger.Warn("Vector index health probe failed: %v", err)
		h.Error = err.Error()
		return h
	}
	h.Healthy = true
	h.DocumentCount = stats.DocumentCount
	return h
}

func (s *HealthService) checkLLM(ctx context.Context) domain.ComponentHealth {
	h := domain.ComponentHealth{Service: HealthLLM}
	if s.llm == nil {
		h.Error = domain.ErrLLMUnavailable.Error()
		return h
	}
	start := time.Now()
	err := s.llm.Ping(ctx)
	h.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		logger.Warn("LLM health probe failed: %v", err)
		h.Error = err.Error()
		return h
	}
	h.Healthy = true
	return h
}
