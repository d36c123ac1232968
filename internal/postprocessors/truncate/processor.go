// Package truncate caps passage content length.
package truncate

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// DefaultMaxChars fits comfortably inside the searchable string limit of hosted indexes.
const DefaultMaxChars = 32000

// Processor cuts passages longer than maxChars. It never creates or drops passages,
// so chunk indices and IDs are preserved.
type Processor struct {
	maxChars int
}

// New creates a truncating processor.
func New(maxChars int) (*Processor, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max_chars must be positive (got %d)", domain.ErrInvalidConfig, maxChars)
	}
	return &Processor{maxChars: maxChars}, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "truncate"
}

// Process truncates each passage and refreshes its cached length.
func (p *Processor) Process(_ context.Context, _ domain.Document, passages []domain.Passage) ([]domain.Passage, error) {
	out := make([]domain.Passage, len(passages))
	for i, passage := range passages {
		if passage.ContentLength > p.maxChars || utf8.RuneCountInString(passage.Content) > p.maxChars {
			passage.Content = domain.Truncate(passage.Content, p.maxChars)
			passage.ContentLength = utf8.RuneCountInString(passage.Content)
		}
		out[i] = passage
	}
	return out, nil
}
