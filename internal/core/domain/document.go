package domain

import (
	"fmt"
	"unicode/utf8"
)

// MinDocumentLength is the shortest cleaned document (in characters) worth chunking.
// Shorter documents are skipped during ingestion.
const MinDocumentLength = 200

// Document is a named source text ready for chunking.
// It is immutable once ingested; re-ingestion replaces it wholesale.
type Document struct {
	// SourceKey is the stable identifier, e.g. the file name stem.
	SourceKey string

	// Content is the cleaned text.
	Content string

	// Path is where the document was read from, if anywhere.
	Path string

	// MIMEType is the detected type of the original file.
	MIMEType string
}

// Length returns the character count of the content.
func (d Document) Length() int {
	return utf8.RuneCountInString(d.Content)
}

// TooShort reports whether the document falls below MinDocumentLength.
func (d Document) TooShort() bool {
	return d.Length() < MinDocumentLength
}

// Passage is the atomic retrievable unit.
// Created by the chunker, given an embedding once, then persisted.
type Passage struct {
	// ID is derived from SourceKey and ChunkIndex; see PassageID.
	ID string `json:"id"`

	// SourceKey refers back to the owning Document.
	SourceKey string `json:"source_file"`

	// ChunkIndex is the zero-based position among the document's passages.
	ChunkIndex int `json:"chunk_index"`

	// Content is the passage text.
	Content string `json:"content"`

	// ContentLength caches the character count of Content.
	ContentLength int `json:"content_length"`

	// Embedding is nil until the embedding stage has run.
	Embedding []float32 `json:"embedding,omitempty"`
}

// PassageID returns the deterministic passage identifier.
func PassageID(sourceKey string, chunkIndex int) string {
	return fmt.Sprintf("%s_chunk_%d", sourceKey, chunkIndex)
}

// NewPassage builds a passage with its derived ID and cached length.
func NewPassage(sourceKey string, chunkIndex int, content string) Passage {
	return Passage{
		ID:            PassageID(sourceKey, chunkIndex),
		SourceKey:     sourceKey,
		ChunkIndex:    chunkIndex,
		Content:       content,
		ContentLength: utf8.RuneCountInString(content),
	}
}

// Searchable reports whether the passage carries an embedding of exactly dim components.
func (p Passage) Searchable(dim int) bool {
	return p.Embedding != nil && len(p.Embedding) == dim
}

// Preview returns at most n characters of the content.
func (p Passage) Preview(n int) string {
	return Truncate(p.Content, n)
}

// Truncate cuts s to at most n characters without splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
