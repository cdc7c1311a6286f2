package fusion

import "sort"

// SearchRequest carries a query string plus the weights applied to each
// candidate's structured, semantic, and temporal scores during fusion.
type SearchRequest struct {
	Query            string
	StructuredWeight float32
	SemanticWeight   float32
	TemporalWeight   float32
}

// NewSearchRequest returns a request for query with the default weights.
func NewSearchRequest(query string) SearchRequest {
	return SearchRequest{
		Query:            query,
		StructuredWeight: 1.0,
		SemanticWeight:   1.0,
		TemporalWeight:   0.5,
	}
}

// UnifiedCandidate is one fusion input: a frame id plus its three
// component scores from whichever subsystem computed them.
type UnifiedCandidate struct {
	ID              uint64
	StructuredScore float32
	SemanticScore   float32
	TemporalScore   float32
}

// UnifiedHit is one fused, ranked result.
type UnifiedHit struct {
	ID    uint64
	Score float32
}

// constraintBoost is applied to the structured score when the query was
// classified as Constraint, favoring exact field matches over fuzzy
// semantic ones.
const constraintBoost = 2.0

// FuseResults combines each candidate's component scores into one fused
// score per request's weights (with the structured score boosted under
// Constraint mode) and returns hits sorted by (score desc, id asc).
func FuseResults(request SearchRequest, mode QueryMode, candidates []UnifiedCandidate) []UnifiedHit {
	boost := float32(1.0)
	if mode == Constraint {
		boost = constraintBoost
	}

	out := make([]UnifiedHit, len(candidates))
	for i, c := range candidates {
		out[i] = UnifiedHit{
			ID: c.ID,
			Score: c.StructuredScore*request.StructuredWeight*boost +
				c.SemanticScore*request.SemanticWeight +
				c.TemporalScore*request.TemporalWeight,
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
