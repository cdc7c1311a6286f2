package vectorindex

// Exact is a brute-force cosine engine: every search scores the full
// stored vector set.
type Exact struct {
	dims    int
	hasDims bool
	vectors map[uint64][]float32
}

// NewExact returns an empty Exact engine.
func NewExact() *Exact {
	return &Exact{vectors: make(map[uint64][]float32)}
}

// Upsert stores vector under id. The first non-empty upsert fixes this
// engine's dimensionality; empty vectors and dimension mismatches are
// silently ignored.
func (e *Exact) Upsert(id uint64, vector []float32) {
	if len(vector) == 0 {
		return
	}
	if e.hasDims && len(vector) != e.dims {
		return
	}
	if !e.hasDims {
		e.dims = len(vector)
		e.hasDims = true
	}
	stored := make([]float32, len(vector))
	copy(stored, vector)
	e.vectors[id] = stored
}

// Remove deletes id's vector, if present.
func (e *Exact) Remove(id uint64) {
	delete(e.vectors, id)
}

// Search scores every stored vector against query and returns the top k,
// sorted by (score desc, id asc). Returns nil if query's length doesn't
// match the established dimensionality.
func (e *Exact) Search(query []float32, k int) []Hit {
	if len(query) == 0 || k <= 0 || !e.hasDims || len(query) != e.dims || zeroNorm(query) {
		return nil
	}

	hits := make([]Hit, 0, len(e.vectors))
	for id, v := range e.vectors {
		hits = append(hits, Hit{ID: id, Score: cosine(query, v)})
	}
	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
