package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewriteLiveSetFiltersAndSorts(t *testing.T) {
	ids, report := rewriteLiveSet([]uint64{5, 1, 3, 2, 4}, []uint64{3, 5})

	require.Equal(t, []uint64{1, 2, 4}, ids)
	require.Equal(t, LiveSetRewriteReport{BeforeCount: 5, AfterCount: 3}, report)
}

func TestRewriteLiveSetEmptySupersededIsIdentitySorted(t *testing.T) {
	ids, report := rewriteLiveSet([]uint64{3, 1, 2}, nil)

	require.Equal(t, []uint64{1, 2, 3}, ids)
	require.Equal(t, LiveSetRewriteReport{BeforeCount: 3, AfterCount: 3}, report)
}

func TestSurrogateMaintenanceMarkAndRebuild(t *testing.T) {
	m := newSurrogateMaintenance()
	m.markStale(1)
	m.markStale(2)
	m.markStale(1) // duplicate mark is a no-op on the count

	require.Equal(t, 2, m.rebuild())
	require.Equal(t, 0, m.rebuild())
}
