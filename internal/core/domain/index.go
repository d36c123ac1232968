package domain

// UpsertResult reports how many submitted passages the index accepted.
type UpsertResult struct {
	Submitted int `json:"submitted"`
	Accepted  int `json:"accepted"`
}

// Rejected returns the number of passages the index did not accept.
func (r UpsertResult) Rejected() int {
	return r.Submitted - r.Accepted
}

// Partial reports whether some but not all passages were accepted.
func (r UpsertResult) Partial() bool {
	return r.Accepted < r.Submitted
}

// Add accumulates another batch result.
func (r UpsertResult) Add(other UpsertResult) UpsertResult {
	return UpsertResult{
		Submitted: r.Submitted + other.Submitted,
		Accepted:  r.Accepted + other.Accepted,
	}
}

// IndexStats describes the contents of a vector index.
type IndexStats struct {
	// DocumentCount is the number of stored passages.
	DocumentCount int64 `json:"documentCount"`

	// StorageSize is the provider-reported storage in bytes, zero if unknown.
	StorageSize int64 `json:"storageSize"`

	// VectorIndexSize is the provider-reported vector index size in bytes, zero if unknown.
	VectorIndexSize int64 `json:"vectorIndexSize"`
}
