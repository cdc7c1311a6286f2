package fusion

import "sort"

// ContextChunk is one candidate chunk of text for the context builder,
// ranked by Importance before packing.
type ContextChunk struct {
	ID         uint64
	Text       string
	Importance int32
}

// TokenCounter counts the tokens in a chunk of text. The concrete
// tokenizer is injected by the caller; this package has no opinion on
// tokenization (tokenizer/embedder implementations are out of scope here).
type TokenCounter func(text string) int

// BuildContext sorts chunks by (importance desc, id asc) and greedily
// packs them into tokenBudget: chunks that would overflow the remaining
// budget are skipped (not a stopping condition), so a single oversized
// chunk never blocks smaller, lower-importance chunks behind it.
func BuildContext(chunks []ContextChunk, tokenBudget int, count TokenCounter) []ContextChunk {
	sorted := make([]ContextChunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Importance != sorted[j].Importance {
			return sorted[i].Importance > sorted[j].Importance
		}
		return sorted[i].ID < sorted[j].ID
	})

	used := 0
	out := make([]ContextChunk, 0, len(sorted))
	for _, c := range sorted {
		tokens := count(c.Text)
		if used+tokens > tokenBudget {
			continue
		}
		used += tokens
		out = append(out, c)
	}
	return out
}
