package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *DurableStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rax.db")
	d, err := OpenDurableStore(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestFlushAndReloadMetadata(t *testing.T) {
	d := openTestStore(t)

	supersedes := uint64(3)
	metas := []Metadata{
		{ID: 1, Timestamp: 100, Status: StatusActive},
		{ID: 2, Timestamp: 200, Status: StatusDeleted, Supersedes: &supersedes},
	}
	require.NoError(t, d.Flush(metas, 42))

	loaded, err := d.LoadMetadata()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byID := make(map[uint64]Metadata)
	for _, m := range loaded {
		byID[m.ID] = m
	}
	require.Equal(t, StatusActive, byID[1].Status)
	require.Equal(t, StatusDeleted, byID[2].Status)
	require.NotNil(t, byID[2].Supersedes)
	require.Equal(t, uint64(3), *byID[2].Supersedes)

	watermark, err := d.LoadWatermark()
	require.NoError(t, err)
	require.Equal(t, uint64(42), watermark)
}

func TestFlushOverwritesPreviousSnapshot(t *testing.T) {
	d := openTestStore(t)

	require.NoError(t, d.Flush([]Metadata{{ID: 1, Timestamp: 1, Status: StatusActive}}, 1))
	require.NoError(t, d.Flush([]Metadata{{ID: 2, Timestamp: 2, Status: StatusActive}}, 2))

	loaded, err := d.LoadMetadata()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, uint64(2), loaded[0].ID)
}

func TestLoadWatermarkDefaultsToZero(t *testing.T) {
	d := openTestStore(t)
	watermark, err := d.LoadWatermark()
	require.NoError(t, err)
	require.Equal(t, uint64(0), watermark)
}
