// Package exact ranks passages by exact cosine similarity.
// It backs the local vector indexes, which scan every stored passage.
package exact

import (
	"math"
	"sort"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Mismatched lengths or zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Ranker keeps the k best passages seen so far.
type Ranker struct {
	query []float32
	k     int
	hits  []domain.RetrievedPassage
}

// NewRanker creates a ranker for a query vector.
func NewRanker(query []float32, k int) *Ranker {
	return &Ranker{query: query, k: k}
}

// Add scores p against the query. Passages of another dimension are ignored.
func (r *Ranker) Add(p domain.Passage) {
	if len(p.Embedding) != len(r.query) {
		return
	}
	score := Cosine(r.query, p.Embedding)
	p.Embedding = nil
	r.hits = append(r.hits, domain.RetrievedPassage{Passage: p, Score: score})
}

// Results returns at most k passages, best first, with 1-based ranks.
// Ties keep insertion order. The result is never nil.
func (r *Ranker) Results() []domain.RetrievedPassage {
	sort.SliceStable(r.hits, func(i, j int) bool {
		return r.hits[i].Score > r.hits[j].Score
	})
	n := len(r.hits)
	if n > r.k {
		n = r.k
	}
	out := make([]domain.RetrievedPassage, n)
	copy(out, r.hits[:n])
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
