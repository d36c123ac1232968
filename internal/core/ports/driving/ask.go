package driving

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// AskService answers questions over the indexed corpus.
type AskService interface {
	// Ask validates the request, retrieves context and generates an answer.
	// Errors are *domain.ValidationError or *domain.PublicError.
	Ask(ctx context.Context, question string, maxResults int) (*domain.Answer, error)
}

// RetrieveService exposes retrieval without generation.
type RetrieveService interface {
	// Retrieve returns ranked passages for the question.
	Retrieve(ctx context.Context, question string, topK int) ([]domain.RetrievedPassage, error)
}
