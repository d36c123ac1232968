package driven

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// VectorIndex is a similarity-search collection of passages.
//
// Ordering is delegated to the provider's distance metric; callers must
// preserve the returned order.
type VectorIndex interface {
	// Upsert inserts or replaces passages by ID. Passages must carry embeddings.
	// Partial acceptance is reported in the result, not as an error.
	Upsert(ctx context.Context, passages []domain.Passage) (domain.UpsertResult, error)

	// Search returns at most k passages best-first, without embeddings.
	// k must be positive. Fewer than k results is not an error.
	// Failures wrap domain.ErrSearchFailure.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedPassage, error)

	// Stats reports the number of stored passages.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Close releases resources.
	Close() error
}

// IndexProvisioner manages the index schema.
// Implemented by backends that need explicit provisioning.
type IndexProvisioner interface {
	// EnsureIndex creates the index if it does not exist.
	EnsureIndex(ctx context.Context) error

	// DropIndex removes the index and all passages. Missing indexes are not an error.
	DropIndex(ctx context.Context) error
}
