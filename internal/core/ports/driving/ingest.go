package driving

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// IngestService runs the offline indexing job.
// Only one run may be active at a time.
type IngestService interface {
	// Run chunks, embeds and upserts the whole corpus.
	Run(ctx context.Context, opts domain.IngestOptions) (*domain.IngestReport, error)

	// Prepare chunks and embeds the corpus without writing to the index.
	Prepare(ctx context.Context, opts domain.IngestOptions) ([]domain.Passage, *domain.IngestReport, error)

	// Upload upserts previously prepared passages.
	Upload(ctx context.Context, passages []domain.Passage) (domain.UpsertResult, error)
}

// IndexService reports on and provisions the vector index.
type IndexService interface {
	// Stats reports the index contents.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Create provisions the index schema, dropping it first when recreate is set.
	Create(ctx context.Context, recreate bool) error

	// Drop removes the index.
	Drop(ctx context.Context) error
}
