// Package vectorindex implements the vector similarity backends: an exact
// brute-force cosine engine, an approximate (LSH-bucketed, HNSW-class
// tunable) engine, and a hybrid engine that fans out to both and reranks
// exactly when the fast path isn't confident. All three share the same
// dimension policy: the first non-empty upsert fixes the index's
// dimensionality; later upserts or searches with a mismatched length are
// silently ignored rather than erroring, since a single wrong-shaped
// vector should never be able to wedge a session's entire index.
package vectorindex

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Hit is one scored search result. Score is always higher-is-better and
// falls in [-1, 1] for the cosine-based backends in this package.
type Hit struct {
	ID    uint64
	Score float32
}

// Engine is the vector index contract every backend in this package
// implements.
type Engine interface {
	Upsert(id uint64, vector []float32)
	Remove(id uint64)
	Search(query []float32, k int) []Hit
}

// cosine returns the cosine similarity of a and b, or 0 if they differ in
// length, are empty, or either has zero norm.
func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	ad := make([]float64, len(a))
	bd := make([]float64, len(b))
	for i := range a {
		ad[i] = float64(a[i])
		bd[i] = float64(b[i])
	}
	na := floats.Norm(ad, 2)
	nb := floats.Norm(bd, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	dot := floats.Dot(ad, bd)
	return float32(dot / (na * nb))
}

// zeroNorm reports whether every component of v is zero. A zero-norm query
// has no defined cosine direction, so backends return no hits for it.
func zeroNorm(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// sortHits orders hits by (score desc, id asc), the tiebreak every backend
// in this package uses.
func sortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
}
