package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragdocs/internal/adapters/driven/vector/exact"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interfaces.
var (
	_ driven.VectorIndex      = (*VectorIndex)(nil)
	_ driven.IndexProvisioner = (*VectorIndex)(nil)
)

// VectorIndex keeps passages in memory and ranks them by exact cosine similarity.
type VectorIndex struct {
	mu         sync.RWMutex
	dimensions int
	passages   map[string]domain.Passage
	order      []string
}

// NewVectorIndex creates an empty index for vectors of the given dimension.
func NewVectorIndex(dimensions int) *VectorIndex {
	return &VectorIndex{
		dimensions: dimensions,
		passages:   make(map[string]domain.Passage),
	}
}

// Upsert inserts or replaces passages by ID.
// Passages without an embedding of the index dimension are rejected.
func (v *VectorIndex) Upsert(_ context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	result := domain.UpsertResult{Submitted: len(passages)}
	for _, p := range passages {
		if !p.Searchable(v.dimensions) {
			continue
		}
		if _, exists := v.passages[p.ID]; !exists {
			v.order = append(v.order, p.ID)
		}
		p.Embedding = append([]float32(nil), p.Embedding...)
		v.passages[p.ID] = p
		result.Accepted++
	}
	return result, nil
}

// Search returns up to k passages nearest to vector, best first.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedPassage, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1", domain.ErrInvalidInput)
	}
	if len(vector) != v.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrSearchFailure, len(vector), v.dimensions)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	ranker := exact.NewRanker(vector, k)
	for _, id := range v.order {
		ranker.Add(v.passages[id])
	}
	return ranker.Results(), nil
}

// Stats reports the number of stored passages.
func (v *VectorIndex) Stats(context.Context) (domain.IndexStats, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return domain.IndexStats{DocumentCount: int64(len(v.passages))}, nil
}

// EnsureIndex is a no-op; the index always exists.
func (v *VectorIndex) EnsureIndex(context.Context) error {
	return nil
}

// DropIndex removes every passage.
func (v *VectorIndex) DropIndex(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.passages = make(map[string]domain.Passage)
	v.order = nil
	return nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
