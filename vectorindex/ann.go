package vectorindex

import "math/rand"

// Config tunes the approximate engine. The knobs are the usual HNSW-class
// ones (connectivity, construction ef, oversampling) even though the index
// itself is a self-contained random-hyperplane LSH rather than a binding
// to an external ANN library.
type Config struct {
	MaxNbConnection    int
	MaxElementsHint    int
	MaxLayer           int
	EfConstruction     int
	SearchOversampling int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		MaxNbConnection:    16,
		MaxElementsHint:    1_000_000,
		MaxLayer:           16,
		EfConstruction:     200,
		SearchOversampling: 8,
	}
}

// numPlanes derives the hyperplane count (and thus bucket fan-out) from
// MaxNbConnection, clamped so the bucket key fits a uint64 and small
// configs still split the space.
func (c Config) numPlanes() int {
	n := c.MaxNbConnection
	if n < 4 {
		n = 4
	}
	if n > 24 {
		n = 24
	}
	return n
}

// ANN is an approximate nearest-neighbor engine built on random-hyperplane
// locality-sensitive hashing: each stored vector is assigned a bucket key
// from the sign pattern of its dot product against a fixed set of random
// planes, and search widens its bucket neighborhood (then falls back to a
// full scan) until it has k live hits or has exhausted the index.
type ANN struct {
	config  Config
	dims    int
	hasDims bool
	planes  [][]float32
	vectors map[uint64][]float32
	buckets map[uint64][]uint64 // bucket key -> ids
	keyOf   map[uint64]uint64   // id -> bucket key
}

// NewANN returns an empty ANN engine with the given config.
func NewANN(config Config) *ANN {
	return &ANN{
		config:  config,
		vectors: make(map[uint64][]float32),
		buckets: make(map[uint64][]uint64),
		keyOf:   make(map[uint64]uint64),
	}
}

func (a *ANN) ensurePlanes() {
	if a.planes != nil {
		return
	}
	n := a.config.numPlanes()
	rng := rand.New(rand.NewSource(int64(a.config.EfConstruction)*1_000_003 + int64(a.dims)))
	planes := make([][]float32, n)
	for i := range planes {
		plane := make([]float32, a.dims)
		for j := range plane {
			plane[j] = float32(rng.NormFloat64())
		}
		planes[i] = plane
	}
	a.planes = planes
}

func (a *ANN) bucketKey(v []float32) uint64 {
	var key uint64
	for i, plane := range a.planes {
		if i >= 64 {
			break
		}
		if dotF32(plane, v) >= 0 {
			key |= 1 << uint(i)
		}
	}
	return key
}

func dotF32(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Upsert stores vector under id. The first non-empty upsert fixes this
// engine's dimensionality and constructs its hyperplanes.
func (a *ANN) Upsert(id uint64, vector []float32) {
	if len(vector) == 0 {
		return
	}
	if a.hasDims && len(vector) != a.dims {
		return
	}
	if !a.hasDims {
		a.dims = len(vector)
		a.hasDims = true
		a.ensurePlanes()
	}

	a.Remove(id)

	stored := make([]float32, len(vector))
	copy(stored, vector)
	a.vectors[id] = stored

	key := a.bucketKey(stored)
	a.buckets[key] = append(a.buckets[key], id)
	a.keyOf[id] = key
}

// Remove deletes id's vector and bucket membership, if present.
func (a *ANN) Remove(id uint64) {
	key, ok := a.keyOf[id]
	if !ok {
		return
	}
	delete(a.vectors, id)
	delete(a.keyOf, id)
	ids := a.buckets[key]
	for i, v := range ids {
		if v == id {
			a.buckets[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(a.buckets[key]) == 0 {
		delete(a.buckets, key)
	}
}

// Search returns up to k hits for query. The candidate pool starts at the
// query's own bucket and widens (by bucket Hamming-neighborhood radius, up
// to a full scan) until it holds k*SearchOversampling candidates or the
// live population is exhausted, then the pool is scored exactly by cosine
// and the top k returned.
func (a *ANN) Search(query []float32, k int) []Hit {
	if len(query) == 0 || k <= 0 || !a.hasDims || len(query) != a.dims {
		return nil
	}
	totalLive := len(a.vectors)
	if totalLive == 0 {
		return nil
	}

	queryKey := a.bucketKey(query)
	oversample := a.config.SearchOversampling
	if oversample < 1 {
		oversample = 1
	}
	ask := k * oversample
	if ask > totalLive {
		ask = totalLive
	}

	var candidateIDs []uint64
	for radius := 0; ; radius++ {
		candidateIDs = a.candidatesWithinRadius(queryKey, radius)
		if len(candidateIDs) >= ask {
			break
		}
	}

	hits := make([]Hit, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		v, ok := a.vectors[id]
		if !ok {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: cosine(query, v)})
	}
	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// candidatesWithinRadius collects every id whose bucket key differs from
// queryKey by at most radius bits. radius 0 is the exact bucket; growing
// radius progressively widens the search toward a full index scan.
func (a *ANN) candidatesWithinRadius(queryKey uint64, radius int) []uint64 {
	if radius >= a.config.numPlanes() {
		out := make([]uint64, 0, len(a.vectors))
		for id := range a.vectors {
			out = append(out, id)
		}
		return out
	}

	var out []uint64
	for key, ids := range a.buckets {
		if popcount(key^queryKey) <= radius {
			out = append(out, ids...)
		}
	}
	return out
}

func popcount(x uint64) int {
	count := 0
	for x != 0 {
		count++
		x &= x - 1
	}
	return count
}
