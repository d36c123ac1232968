package resilient

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.VectorIndex      = (*VectorIndex)(nil)
	_ driven.IndexProvisioner = (*VectorIndex)(nil)
)

// EmbeddingService retries Embed and EmbedBatch.
type EmbeddingService struct {
	next   driven.EmbeddingService
	policy Policy
}

// NewEmbeddingService wraps next with retries.
func NewEmbeddingService(next driven.EmbeddingService, policy Policy) *EmbeddingService {
	return &EmbeddingService{next: next, policy: policy}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	return doValue(ctx, s.policy, "embed", func() ([]float32, error) {
		return s.next.Embed(ctx, text)
	})
}

func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return doValue(ctx, s.policy, "embed batch", func() ([][]float32, error) {
		return s.next.EmbedBatch(ctx, texts)
	})
}

func (s *EmbeddingService) Dimensions() int                { return s.next.Dimensions() }
func (s *EmbeddingService) ModelName() string              { return s.next.ModelName() }
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }
func (s *EmbeddingService) Close() error                   { return s.next.Close() }

// LLMService retries Generate and Chat.
type LLMService struct {
	next   driven.LLMService
	policy Policy
}

// NewLLMService wraps next with retries.
func NewLLMService(next driven.LLMService, policy Policy) *LLMService {
	return &LLMService{next: next, policy: policy}
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.ChatOptions) (string, error) {
	return doValue(ctx, s.policy, "generate", func() (string, error) {
		return s.next.Generate(ctx, prompt, opts)
	})
}

func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return doValue(ctx, s.policy, "chat", func() (string, error) {
		return s.next.Chat(ctx, messages, opts)
	})
}

func (s *LLMService) ModelName() string              { return s.next.ModelName() }
func (s *LLMService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }
func (s *LLMService) Close() error                   { return s.next.Close() }

// VectorIndex retries Search and Stats. Upsert is not retried: a partial
// batch may already have been applied.
type VectorIndex struct {
	next   driven.VectorIndex
	policy Policy
}

// NewVectorIndex wraps next with retries.
func NewVectorIndex(next driven.VectorIndex, policy Policy) *VectorIndex {
	return &VectorIndex{next: next, policy: policy}
}

func (v *VectorIndex) Upsert(ctx context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	return v.next.Upsert(ctx, passages)
}

func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedPassage, error) {
	return doValue(ctx, v.policy, "search", func() ([]domain.RetrievedPassage, error) {
		return v.next.Search(ctx, query, k)
	})
}

func (v *VectorIndex) Stats(ctx context.Context) (domain.IndexStats, error) {
	return doValue(ctx, v.policy, "stats", func() (domain.IndexStats, error) {
		return v.next.Stats(ctx)
	})
}

func (v *VectorIndex) Close() error { return v.next.Close() }

// EnsureIndex forwards to the wrapped index when it can provision.
func (v *VectorIndex) EnsureIndex(ctx context.Context) error {
	p, ok := v.next.(driven.IndexProvisioner)
	if !ok {
		return domain.ErrNotImplemented
	}
	return p.EnsureIndex(ctx)
}

// DropIndex forwards to the wrapped index when it can provision.
func (v *VectorIndex) DropIndex(ctx context.Context) error {
	p, ok := v.next.(driven.IndexProvisioner)
	if !ok {
		return domain.ErrNotImplemented
	}
	return p.DropIndex(ctx)
}
