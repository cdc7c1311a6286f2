package fusion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyQuery(t *testing.T) {
	require.Equal(t, Constraint, ClassifyQuery("status:active"))
	require.Equal(t, Constraint, ClassifyQuery("x=1"))
	require.Equal(t, Semantic, ClassifyQuery("find similar memories"))
}

func TestFuseResultsConstraintBoost(t *testing.T) {
	req := NewSearchRequest("status:active")
	candidates := []UnifiedCandidate{
		{ID: 1, StructuredScore: 1.0, SemanticScore: 0.1, TemporalScore: 0},
		{ID: 2, StructuredScore: 0.1, SemanticScore: 1.0, TemporalScore: 0},
	}

	hits := FuseResults(req, Constraint, candidates)
	require.Equal(t, uint64(1), hits[0].ID) // structured gets x2 boost under Constraint
	require.InDelta(t, 2.1, hits[0].Score, 1e-6)
}

func TestFuseResultsSemanticNoBoost(t *testing.T) {
	req := NewSearchRequest("find similar memories")
	candidates := []UnifiedCandidate{
		{ID: 1, StructuredScore: 1.0, SemanticScore: 0.1, TemporalScore: 0},
		{ID: 2, StructuredScore: 0.1, SemanticScore: 1.0, TemporalScore: 0},
	}

	hits := FuseResults(req, Semantic, candidates)
	require.Equal(t, uint64(2), hits[0].ID)
}

func TestFuseResultsTiebreakByID(t *testing.T) {
	req := NewSearchRequest("q")
	candidates := []UnifiedCandidate{
		{ID: 5, StructuredScore: 1, SemanticScore: 0, TemporalScore: 0},
		{ID: 2, StructuredScore: 1, SemanticScore: 0, TemporalScore: 0},
	}
	hits := FuseResults(req, Semantic, candidates)
	require.Equal(t, uint64(2), hits[0].ID)
	require.Equal(t, uint64(5), hits[1].ID)
}

func wordCounter(text string) int {
	return len(strings.Fields(text))
}

func TestBuildContextGreedyPacksByImportance(t *testing.T) {
	chunks := []ContextChunk{
		{ID: 1, Text: "one two three", Importance: 1},
		{ID: 2, Text: "four five", Importance: 5},
		{ID: 3, Text: "six", Importance: 3},
	}

	out := BuildContext(chunks, 3, wordCounter)
	require.Len(t, out, 2)
	require.Equal(t, uint64(2), out[0].ID)
	require.Equal(t, uint64(3), out[1].ID)
}

func TestBuildContextSkipsOversizedChunkNotStop(t *testing.T) {
	chunks := []ContextChunk{
		{ID: 1, Text: "one two three four five", Importance: 10}, // 5 tokens, too big alone
		{ID: 2, Text: "six", Importance: 1},
	}

	out := BuildContext(chunks, 2, wordCounter)
	require.Len(t, out, 1)
	require.Equal(t, uint64(2), out[0].ID)
}

func TestBuildContextTiebreakByID(t *testing.T) {
	chunks := []ContextChunk{
		{ID: 2, Text: "a", Importance: 1},
		{ID: 1, Text: "a", Importance: 1},
	}
	out := BuildContext(chunks, 10, wordCounter)
	require.Equal(t, uint64(1), out[0].ID)
	require.Equal(t, uint64(2), out[1].ID)
}

func TestSelectTier(t *testing.T) {
	require.Equal(t, Tiny, SelectTier(0))
	require.Equal(t, Tiny, SelectTier(16))
	require.Equal(t, Short, SelectTier(17))
	require.Equal(t, Short, SelectTier(64))
	require.Equal(t, Long, SelectTier(65))
}
