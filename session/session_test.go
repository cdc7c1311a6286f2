package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/raxdb/rax/fusion"
)

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	root := filepath.Join(t.TempDir(), "store")
	s, err := NewSession(root, ReadWrite, cfg, nil, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRememberAndRecall(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	id, err := s.Remember("the quick brown fox")
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	hits, err := s.Recall("quick")
	require.NoError(t, err)
	require.Equal(t, []string{"the quick brown fox"}, hits)
}

func TestRememberReadOnlyRejected(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")
	s, err := NewSession(root, ReadOnly, DefaultConfig(), nil, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Remember("text")
	require.Error(t, err)
	sessErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrReadOnly, sessErr.Kind)
}

func TestRememberTextSearchDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableTextSearch = false
	s := newTestSession(t, cfg)

	_, err := s.Remember("text")
	require.Error(t, err)
	sessErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrTextSearchDisabled, sessErr.Kind)
}

func TestRememberWithEmbeddingAndRecallSemantic(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	id, err := s.RememberWithEmbedding("alpha", []float32{1, 0})
	require.NoError(t, err)

	_, err = s.RememberWithEmbedding("beta", []float32{0, 1})
	require.NoError(t, err)

	out, err := s.RecallSemantic([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha"}, out)
	require.Equal(t, uint64(1), id)
}

func TestRememberWithEmbeddingDimensionMismatch(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	_, err := s.RememberWithEmbedding("alpha", []float32{1, 0})
	require.NoError(t, err)

	_, err = s.RememberWithEmbedding("beta", []float32{1, 0, 0})
	require.Error(t, err)
	sessErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrVectorDimensionMismatch, sessErr.Kind)
	require.Equal(t, 2, sessErr.Expected)
	require.Equal(t, 3, sessErr.Got)
}

func TestRememberWithEmbeddingVectorOnlySession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableTextSearch = false
	s := newTestSession(t, cfg)

	id, err := s.RememberWithEmbedding("alpha", []float32{1, 0})
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	out, err := s.RecallSemantic([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha"}, out)
}

func TestRememberWithEmbeddingVectorDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableTextSearch = false
	cfg.EnableVectorSearch = false
	s := newTestSession(t, cfg)

	_, err := s.RememberWithEmbedding("alpha", []float32{1, 0})
	require.Error(t, err)
	sessErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrVectorSearchDisabled, sessErr.Kind)
}

func TestRememberWithEmptyEmbeddingRejected(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	_, err := s.RememberWithEmbedding("alpha", nil)
	require.Error(t, err)
	sessErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrEmptyEmbedding, sessErr.Kind)
}

func TestRememberWithEmbedderSuccess(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	id, err := s.RememberWithEmbedder("alpha", func(text string) ([]float32, error) {
		require.Equal(t, "alpha", text)
		return []float32{1, 0}, nil
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	out, err := s.RecallSemantic([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha"}, out)
}

func TestRememberWithEmbedderProviderFailure(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	providerErr := errors.New("embedder unavailable")
	_, err := s.RememberWithEmbedder("alpha", func(string) ([]float32, error) {
		return nil, providerErr
	})
	require.Error(t, err)
	sessErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrEmbeddingProvider, sessErr.Kind)
	require.Contains(t, sessErr.Error(), "embedder unavailable")

	hits, err := s.Recall("alpha")
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestForgetAndSupersedeTimeline(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	a, err := s.Remember("v1")
	require.NoError(t, err)
	b, err := s.Remember("v2")
	require.NoError(t, err)

	require.NoError(t, s.Supersede(a, b))

	timeline := s.Timeline(false)
	require.Len(t, timeline, 1)
	require.Equal(t, b, timeline[0].ID)

	require.NoError(t, s.Forget(b))
	require.Empty(t, s.Timeline(false))

	// The superseded-but-active predecessor is still reachable for
	// timeline reconstruction.
	full := s.Timeline(true)
	require.Len(t, full, 1)
	require.Equal(t, a, full[0].ID)
}

func TestSupersedeAndForgetMarkSurrogatesStaleForRebuild(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	a, err := s.Remember("v1")
	require.NoError(t, err)
	b, err := s.Remember("v2")
	require.NoError(t, err)

	require.NoError(t, s.Supersede(a, b))
	require.NoError(t, s.Forget(b))

	require.Equal(t, 1, s.RebuildSurrogates())
	require.Equal(t, 0, s.RebuildSurrogates())
}

func TestRewriteLiveSetViaSession(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	ids, report := s.RewriteLiveSet([]uint64{3, 1, 2}, []uint64{2})
	require.Equal(t, []uint64{1, 3}, ids)
	require.Equal(t, LiveSetRewriteReport{BeforeCount: 3, AfterCount: 2}, report)
}

func TestStageZeroesPendingAndCommitPersists(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	_, err := s.Remember("a")
	require.NoError(t, err)
	_, err = s.Remember("b")
	require.NoError(t, err)

	report, err := s.Stage(false)
	require.NoError(t, err)
	require.Equal(t, 2, report.PendingTextEntries)
	require.Equal(t, 0, s.pending)

	_, err = s.Remember("c")
	require.NoError(t, err)

	commitReport, err := s.Commit(true)
	require.NoError(t, err)
	require.Equal(t, 1, commitReport.PendingTextEntries)
	require.Len(t, s.SegmentNames(), 1)
}

func TestCommitRecoversAcrossReopen(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")
	s, err := NewSession(root, ReadWrite, DefaultConfig(), nil, nil, prometheus.NewRegistry())
	require.NoError(t, err)

	_, err = s.Remember("durable text")
	require.NoError(t, err)
	_, err = s.Commit(false)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSession(root, ReadWrite, DefaultConfig(), nil, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	defer reopened.Close()

	hits, err := reopened.Recall("durable")
	require.NoError(t, err)
	require.Equal(t, []string{"durable text"}, hits)
}

func TestStructuredEntityLifecycle(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	require.NoError(t, s.UpsertEntity("User-1", map[string]string{"city": "seoul"}))

	e, ok, err := s.GetEntity("user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "seoul", e.Attrs["city"])

	require.NoError(t, s.DeleteEntity("USER-1"))
	_, ok, err = s.GetEntity("user-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStructuredMemoryDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableStructuredMemory = false
	s := newTestSession(t, cfg)

	err := s.UpsertEntity("a", nil)
	require.Error(t, err)
	sessErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrStructuredMemoryDisabled, sessErr.Kind)
}

func TestSearchConstraintMatchesLiteralFieldTerm(t *testing.T) {
	s := newTestSession(t, DefaultConfig())

	_, err := s.Remember("city:seoul marker")
	require.NoError(t, err)
	_, err = s.Remember("city:tokyo marker")
	require.NoError(t, err)

	req := fusion.NewSearchRequest("city:seoul")
	hits := s.Search(req, nil, 2)
	require.Len(t, hits, 1)
	require.Equal(t, uint64(1), hits[0].ID)
}
