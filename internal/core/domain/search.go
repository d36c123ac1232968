package domain

import (
	"strings"
	"unicode/utf8"
)

// Request bounds for the ask pipeline.
const (
	// MinTopK is the smallest accepted result bound.
	MinTopK = 1

	// MaxTopK is the largest accepted result bound.
	MaxTopK = 10

	// DefaultTopK is used when a caller does not choose.
	DefaultTopK = 3

	// MaxQuestionLength is the longest accepted question in characters.
	MaxQuestionLength = 500

	// PreviewLength is the number of characters shown per cited source.
	PreviewLength = 150
)

// Query is a transient question with its result bound. Never persisted.
type Query struct {
	// Question is the natural-language question.
	Question string

	// MaxResults bounds how many passages are retrieved.
	MaxResults int
}

// Validate checks the question and result bound.
func (q Query) Validate() error {
	question := strings.TrimSpace(q.Question)
	if question == "" {
		return NewValidationError("question", "question must not be empty")
	}
	if n := utf8.RuneCountInString(question); n > MaxQuestionLength {
		return NewValidationError("question", "question must be at most %d characters (got %d)", MaxQuestionLength, n)
	}
	return ValidateTopK(q.MaxResults)
}

// ValidateTopK rejects result bounds outside [MinTopK, MaxTopK].
// Values are never clamped.
func ValidateTopK(k int) error {
	if k < MinTopK || k > MaxTopK {
		return NewValidationError("max_results", "max_results must be between %d and %d (got %d)", MinTopK, MaxTopK, k)
	}
	return nil
}

// RetrievedPassage is a passage ranked by the vector index for one request.
type RetrievedPassage struct {
	Passage

	// Rank is the 1-based position returned by the index, best match first.
	Rank int `json:"rank"`

	// Score is the provider's similarity score, zero when not reported.
	Score float64 `json:"score"`
}

// SourceSummary describes one passage an answer was grounded on.
type SourceSummary struct {
	SourceKey  string `json:"sourceKey"`
	ChunkIndex int    `json:"chunkIndex"`
	Preview    string `json:"preview"`
}

// Answer is the response of one ask request. Built fresh per request.
type Answer struct {
	// Question echoes the asked question.
	Question string `json:"question"`

	// Text is the generated answer.
	Text string `json:"answer"`

	// SourcesUsed is the number of passages placed in the context.
	SourcesUsed int `json:"sourcesUsed"`

	// Sources lists the passages in retrieval order.
	Sources []SourceSummary `json:"sources"`
}

// SummariseSources builds the source list for an answer.
// The result is never nil so it encodes as an empty JSON array.
func SummariseSources(passages []RetrievedPassage) []SourceSummary {
	out := make([]SourceSummary, 0, len(passages))
	for _, p := range passages {
		out = append(out, SourceSummary{
			SourceKey:  p.SourceKey,
			ChunkIndex: p.ChunkIndex,
			Preview:    p.Preview(PreviewLength),
		})
	}
	return out
}
