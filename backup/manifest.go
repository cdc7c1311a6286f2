// Package backup implements the backup chain: manifest construction,
// chain verification, point-in-time restore target selection, and JSON
// export/import of manifests through the object store.
package backup

import "github.com/google/uuid"

// Manifest describes one snapshot: its id, the snapshot it is
// incremental against (nil for a full/base snapshot), the WAL sequence
// range it covers, and the segment files that changed since its base.
type Manifest struct {
	SnapshotID      string   `json:"snapshot_id"`
	BaseSnapshotID  *string  `json:"base_snapshot_id,omitempty"`
	Generation      uint64   `json:"generation"`
	WalStartSeq     uint64   `json:"wal_start_seq"`
	WalEndSeq       uint64   `json:"wal_end_seq"`
	ChangedSegments []string `json:"changed_segments"`
}

// NewSnapshotID returns a fresh random snapshot id.
func NewSnapshotID() string {
	return uuid.NewString()
}

// FullManifest builds a base (non-incremental) manifest.
func FullManifest(snapshotID string, generation uint64, segments []string) Manifest {
	if segments == nil {
		segments = []string{}
	}
	return Manifest{
		SnapshotID:      snapshotID,
		Generation:      generation,
		ChangedSegments: segments,
	}
}

// IncrementalManifest builds a manifest incremental against baseSnapshotID,
// covering the given WAL sequence range.
func IncrementalManifest(baseSnapshotID, snapshotID string, generation, walStartSeq, walEndSeq uint64, segments []string) Manifest {
	base := baseSnapshotID
	if segments == nil {
		segments = []string{}
	}
	return Manifest{
		SnapshotID:      snapshotID,
		BaseSnapshotID:  &base,
		Generation:      generation,
		WalStartSeq:     walStartSeq,
		WalEndSeq:       walEndSeq,
		ChangedSegments: segments,
	}
}
