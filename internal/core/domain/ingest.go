package domain

import "time"

// IngestOptions tunes a single ingestion run.
type IngestOptions struct {
	// Limit caps the number of passages embedded. Zero means no limit.
	Limit int

	// DryRun chunks and embeds but does not upsert.
	DryRun bool
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	// Documents is the number of documents read from the corpus.
	Documents int `json:"documents"`

	// SkippedDocuments counts documents shorter than MinDocumentLength.
	SkippedDocuments int `json:"skippedDocuments"`

	// Passages is the number of passages produced by chunking.
	Passages int `json:"passages"`

	// Embedded counts passages that received a valid embedding.
	Embedded int `json:"embedded"`

	// EmbeddingFailures counts passages excluded because embedding failed
	// or returned the wrong dimensionality.
	EmbeddingFailures int `json:"embeddingFailures"`

	// Upsert is the index's accepted/submitted tally.
	Upsert UpsertResult `json:"upsert"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}
