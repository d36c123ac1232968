package driven

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// CorpusSource lists the documents to ingest.
type CorpusSource interface {
	// List returns every document, normalised to clean text.
	// Documents that cannot be read or normalised are skipped and logged.
	List(ctx context.Context) ([]domain.Document, error)
}

// Normaliser extracts clean text from one file format.
type Normaliser interface {
	// Name identifies the normaliser in logs.
	Name() string

	// SupportedExtensions lists lower-case extensions with the dot, e.g. ".html".
	SupportedExtensions() []string

	// Normalise returns clean text for the file contents.
	Normalise(ctx context.Context, filename string, data []byte) (string, error)
}
