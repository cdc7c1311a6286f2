package vectorindex

// HybridConfig tunes the two-stage hybrid engine: how far past k the
// primary pass over-asks, when its k-th score is confident enough to skip
// the rerank, and how many unioned candidates the rerank will re-score.
type HybridConfig struct {
	PrimaryMultiplier      int
	ConfidentKthScore      float32
	PrimaryCandidateMult   int
	SecondaryCandidateMult int
	RerankCandidateCap     int
}

// DefaultHybridConfig returns the tuned defaults.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{
		PrimaryMultiplier:      2,
		ConfidentKthScore:      0.82,
		PrimaryCandidateMult:   20,
		SecondaryCandidateMult: 10,
		RerankCandidateCap:     128,
	}
}

// Hybrid queries a fast primary engine first; if its kth-best score clears
// the confidence threshold, that top-k is returned directly. Otherwise it
// fans out to both the primary and a secondary engine, unions the
// candidate ids, caps the set, and rescores everything exactly by cosine.
type Hybrid struct {
	config    HybridConfig
	dims      int
	hasDims   bool
	vectors   map[uint64][]float32
	primary   Engine
	secondary Engine
}

// NewHybrid returns a Hybrid engine fanning out across primary and
// secondary. primary is queried first and should be the cheaper backend
// (Exact over a small working set, or another ANN engine); secondary
// supplies the second opinion when primary isn't confident.
func NewHybrid(primary, secondary Engine, config HybridConfig) *Hybrid {
	return &Hybrid{
		config:    config,
		vectors:   make(map[uint64][]float32),
		primary:   primary,
		secondary: secondary,
	}
}

// Upsert fans out to both backends and retains a copy for exact reranking.
func (h *Hybrid) Upsert(id uint64, vector []float32) {
	if len(vector) == 0 {
		return
	}
	if h.hasDims && len(vector) != h.dims {
		return
	}
	if !h.hasDims {
		h.dims = len(vector)
		h.hasDims = true
	}

	h.primary.Upsert(id, vector)
	h.secondary.Upsert(id, vector)
	stored := make([]float32, len(vector))
	copy(stored, vector)
	h.vectors[id] = stored
}

// Remove fans out to both backends.
func (h *Hybrid) Remove(id uint64) {
	h.primary.Remove(id)
	h.secondary.Remove(id)
	delete(h.vectors, id)
}

// Search implements the confident-top-k short circuit, else dual fan-out
// plus exact rerank, as described in the package doc.
func (h *Hybrid) Search(query []float32, k int) []Hit {
	if len(query) == 0 || k <= 0 || !h.hasDims || len(query) != h.dims {
		return nil
	}
	maxCandidates := len(h.vectors)
	if maxCandidates == 0 {
		return nil
	}

	primaryK := expandedK(k, h.config.PrimaryMultiplier, maxCandidates)
	primaryHits := h.primary.Search(query, primaryK)
	if isConfidentTopK(primaryHits, k, h.config.ConfidentKthScore) {
		sortHits(primaryHits)
		if len(primaryHits) > k {
			primaryHits = primaryHits[:k]
		}
		return primaryHits
	}

	primaryCandK := expandedK(k, h.config.PrimaryCandidateMult, maxCandidates)
	secondaryCandK := expandedK(k, h.config.SecondaryCandidateMult, maxCandidates)
	primaryCand := h.primary.Search(query, primaryCandK)
	secondaryCand := h.secondary.Search(query, secondaryCandK)

	bestScore := make(map[uint64]float32, len(primaryCand)+len(secondaryCand))
	for _, hit := range primaryCand {
		if s, ok := bestScore[hit.ID]; !ok || hit.Score > s {
			bestScore[hit.ID] = hit.Score
		}
	}
	for _, hit := range secondaryCand {
		if s, ok := bestScore[hit.ID]; !ok || hit.Score > s {
			bestScore[hit.ID] = hit.Score
		}
	}
	if len(bestScore) == 0 {
		return nil
	}

	candidates := make([]Hit, 0, len(bestScore))
	for id, score := range bestScore {
		candidates = append(candidates, Hit{ID: id, Score: score})
	}
	sortHits(candidates)

	rerankCap := h.config.RerankCandidateCap
	if rerankCap < k {
		rerankCap = k
	}
	if rerankCap > len(candidates) {
		rerankCap = len(candidates)
	}
	candidates = candidates[:rerankCap]

	out := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		v, ok := h.vectors[c.ID]
		if !ok {
			continue
		}
		out = append(out, Hit{ID: c.ID, Score: cosine(query, v)})
	}
	sortHits(out)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func expandedK(baseK, multiplier, maxCandidates int) int {
	if multiplier < 1 {
		multiplier = 1
	}
	ask := baseK * multiplier
	if ask < 1 {
		ask = 1
	}
	if ask > maxCandidates {
		ask = maxCandidates
	}
	return ask
}

func isConfidentTopK(hits []Hit, k int, threshold float32) bool {
	if len(hits) < k {
		return false
	}
	top := make([]Hit, len(hits))
	copy(top, hits)
	sortHits(top)
	return top[k-1].Score >= threshold
}
