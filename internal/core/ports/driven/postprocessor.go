package driven

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// PostProcessor turns document content into passages.
// PostProcessors are chained in a pipeline (chunking, then refinement).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and the passages so far.
	// A creating processor (the chunker) ignores its input passages.
	Process(ctx context.Context, doc domain.Document, passages []domain.Passage) ([]domain.Passage, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	Process(ctx context.Context, doc domain.Document) ([]domain.Passage, error)
}
