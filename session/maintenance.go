package session

import "sort"

// LiveSetRewriteReport summarizes a live-set rewrite: how many logical ids
// went in versus how many remained after superseded ids were filtered out.
type LiveSetRewriteReport struct {
	BeforeCount int
	AfterCount  int
}

// rewriteLiveSet removes supersededIDs from logicalIDs and returns the
// sorted remainder alongside a before/after count report. Used by
// maintenance tooling that needs the post-supersede working set without
// re-deriving it from the lifecycle store on every call.
func rewriteLiveSet(logicalIDs, supersededIDs []uint64) ([]uint64, LiveSetRewriteReport) {
	superseded := make(map[uint64]struct{}, len(supersededIDs))
	for _, id := range supersededIDs {
		superseded[id] = struct{}{}
	}

	rewritten := make([]uint64, 0, len(logicalIDs))
	for _, id := range logicalIDs {
		if _, ok := superseded[id]; ok {
			continue
		}
		rewritten = append(rewritten, id)
	}
	sort.Slice(rewritten, func(i, j int) bool { return rewritten[i] < rewritten[j] })

	return rewritten, LiveSetRewriteReport{
		BeforeCount: len(logicalIDs),
		AfterCount:  len(rewritten),
	}
}

// surrogateMaintenance tracks frame ids whose cached surrogate (e.g. a RAG
// tier classification) needs recomputation after the frame they summarize
// changed underneath them.
type surrogateMaintenance struct {
	stale map[uint64]struct{}
}

func newSurrogateMaintenance() *surrogateMaintenance {
	return &surrogateMaintenance{stale: make(map[uint64]struct{})}
}

func (m *surrogateMaintenance) markStale(id uint64) {
	m.stale[id] = struct{}{}
}

// rebuild clears the stale set and reports how many ids were pending.
func (m *surrogateMaintenance) rebuild() int {
	count := len(m.stale)
	m.stale = make(map[uint64]struct{})
	return count
}
