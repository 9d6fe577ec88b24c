package rag

import (
	"math"
	"sort"
)

// ScoredChunk is a chunk paired with its similarity to a query.
type ScoredChunk struct {
	Chunk
	Score float64
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or with zero magnitude score 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK ranks chunks by similarity to query and returns at most k of them,
// best first. Equal scores keep the lower chunk index first.
func TopK(query []float64, chunks []Chunk, k int) []ScoredChunk {
	if k <= 0 || len(chunks) == 0 {
		return nil
	}

	scored := make([]ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = ScoredChunk{Chunk: c, Score: Cosine(query, c.Embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}
