// Package chunker provides the word-window chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of words shared by consecutive chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// MinChunkLength is the trimmed length a window must exceed to be kept.
// Shorter windows are headers and navigation remnants.
const MinChunkLength = 100

// Chunk splits text into overlapping windows of size words, advancing by
// size-overlap words. Windows of MinChunkLength characters or fewer are dropped.
func Chunk(text string, size, overlap int) ([]string, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	step := size - overlap
	var chunks []string

	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.TrimSpace(strings.Join(words[start:end], " "))
		if utf8.RuneCountInString(chunk) > MinChunkLength {
			chunks = append(chunks, chunk)
		}
	}

	return chunks, nil
}

func validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive (got %d)", domain.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap must satisfy 0 <= overlap < chunk size (got overlap %d, size %d)",
			domain.ErrInvalidConfig, overlap, size)
	}
	return nil
}

// Processor turns a document into passages.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker processor. Invalid sizes are rejected, not corrected.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validate(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the window length in words.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the number of shared words between windows.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process chunks the document content into passages.
// Input passages are ignored; chunk indices run over the kept windows.
func (p *Processor) Process(_ context.Context, doc domain.Document, _ []domain.Passage) ([]domain.Passage, error) {
	chunks, err := Chunk(doc.Content, p.chunkSize, p.overlap)
	if err != nil {
		return nil, err
	}

	passages := make([]domain.Passage, 0, len(chunks))
	for i, c := range chunks {
		passages = append(passages, domain.NewPassage(doc.SourceKey, i, c))
	}
	return passages, nil
}
