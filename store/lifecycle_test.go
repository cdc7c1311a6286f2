package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetVisible(t *testing.T) {
	s := NewLifecycleStore()
	id := s.Put([]byte("hello"), 100)
	require.Equal(t, uint64(1), id)

	payload, meta, ok := s.GetVisible(id)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), payload)
	require.Equal(t, StatusActive, meta.Status)
}

func TestDeleteEvictsPayloadKeepsMetadata(t *testing.T) {
	s := NewLifecycleStore()
	id := s.Put([]byte("hello"), 100)
	s.Delete(id)

	_, _, ok := s.GetVisible(id)
	require.False(t, ok)

	timeline := s.Timeline(true)
	require.Empty(t, timeline) // Timeline only includes Active frames

	all := s.AllMetadata()
	require.Len(t, all, 1)
	require.Equal(t, id, all[0].ID)
	require.Equal(t, StatusDeleted, all[0].Status)
	_, kept := s.AllPayloads()[id]
	require.False(t, kept)
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	s := NewLifecycleStore()
	require.NotPanics(t, func() { s.Delete(999) })
}

func TestSupersedeLinksBothSides(t *testing.T) {
	s := NewLifecycleStore()
	oldID := s.Put([]byte("v1"), 100)
	newID := s.Put([]byte("v2"), 200)
	s.Supersede(oldID, newID)

	_, oldMeta, ok := s.GetVisible(oldID)
	require.False(t, ok) // superseded frames are not visible
	_ = oldMeta

	_, newMeta, ok := s.GetVisible(newID)
	require.True(t, ok)
	require.NotNil(t, newMeta.Supersedes)
	require.Equal(t, oldID, *newMeta.Supersedes)
}

func TestSupersedeMissingIDAppliesOtherSideOnly(t *testing.T) {
	s := NewLifecycleStore()
	newID := s.Put([]byte("v2"), 200)
	s.Supersede(999, newID)

	_, newMeta, ok := s.GetVisible(newID)
	require.True(t, ok)
	require.NotNil(t, newMeta.Supersedes)
	require.Equal(t, uint64(999), *newMeta.Supersedes)
}

func TestTimelineOrderingAndSupersededFilter(t *testing.T) {
	s := NewLifecycleStore()
	a := s.Put([]byte("a"), 300)
	b := s.Put([]byte("b"), 100)
	c := s.Put([]byte("c"), 200)
	s.Supersede(a, c)

	full := s.Timeline(true)
	require.Len(t, full, 3)
	require.Equal(t, b, full[0].ID)
	require.Equal(t, c, full[1].ID)
	require.Equal(t, a, full[2].ID)

	excluding := s.Timeline(false)
	require.Len(t, excluding, 2)
	for _, m := range excluding {
		require.NotEqual(t, a, m.ID)
	}
}

func TestTimelineTiebreakPreservesInsertionOrder(t *testing.T) {
	s := NewLifecycleStore()
	first := s.Put([]byte("a"), 100)
	second := s.Put([]byte("b"), 100)

	timeline := s.Timeline(true)
	require.Len(t, timeline, 2)
	require.Equal(t, first, timeline[0].ID)
	require.Equal(t, second, timeline[1].ID)
}

func TestAllPayloadsExcludesDeleted(t *testing.T) {
	s := NewLifecycleStore()
	id := s.Put([]byte("kept"), 100)
	gone := s.Put([]byte("evicted"), 200)
	s.Delete(gone)

	payloads := s.AllPayloads()
	require.Equal(t, []byte("kept"), payloads[id])
	_, ok := payloads[gone]
	require.False(t, ok)
}

func TestRestoreRebuildsStateAndNextID(t *testing.T) {
	s := NewLifecycleStore()
	supersedes := uint64(3)
	metas := []Metadata{
		{ID: 1, Timestamp: 100, Status: StatusActive},
		{ID: 5, Timestamp: 200, Status: StatusDeleted, Supersedes: &supersedes},
	}
	payloads := map[uint64][]byte{1: []byte("hello")}

	s.Restore(metas, payloads)

	payload, meta, ok := s.GetVisible(1)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), payload)
	require.Equal(t, StatusActive, meta.Status)

	_, _, ok = s.GetVisible(5)
	require.False(t, ok) // Deleted

	next := s.Put([]byte("new"), 300)
	require.Equal(t, uint64(6), next) // nextID advanced past the highest restored id
}
