// Package store implements the frame lifecycle store: the in-memory
// authority for frame metadata (status, timestamps, supersede links) and
// payloads, plus durable persistence of that state and the WAL commit
// watermark. It is the layer the session package drives on every
// remember/stage/commit call.
package store

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/immutable"
)

// FrameStatus is a frame's lifecycle state.
type FrameStatus int

const (
	// StatusActive marks a frame whose payload is retrievable.
	StatusActive FrameStatus = iota
	// StatusDeleted marks a frame whose payload has been evicted; its
	// metadata is retained.
	StatusDeleted
)

// Metadata is everything the lifecycle store tracks about a frame other
// than its payload.
type Metadata struct {
	ID           uint64
	Timestamp    uint64
	Status       FrameStatus
	Supersedes   *uint64
	SupersededBy *uint64
}

// lifecycleState is the immutable snapshot readers observe, following the
// same clone-mutate-commit-swap discipline as wal.Ring.
type lifecycleState struct {
	meta     *immutable.SortedMap[uint64, Metadata]
	payloads *immutable.SortedMap[uint64, []byte]
}

func uint64Compare(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func newLifecycleState() *lifecycleState {
	return &lifecycleState{
		meta:     immutable.NewSortedMap[uint64, Metadata](uint64Comparer{}),
		payloads: immutable.NewSortedMap[uint64, []byte](uint64Comparer{}),
	}
}

type uint64Comparer struct{}

func (uint64Comparer) Compare(a, b uint64) int { return uint64Compare(a, b) }

// LifecycleStore is the single-writer, many-reader authority for frame
// metadata and payloads. Mutations (Put/Delete/Supersede) are serialized
// under writeMu; reads (GetVisible/Timeline) load a lock-free snapshot.
type LifecycleStore struct {
	writeMu sync.Mutex
	nextID  uint64 // only touched under writeMu
	state   atomic.Value
}

// NewLifecycleStore returns an empty store with ids starting at 1.
func NewLifecycleStore() *LifecycleStore {
	s := &LifecycleStore{nextID: 1}
	s.state.Store(newLifecycleState())
	return s
}

func (s *LifecycleStore) load() *lifecycleState {
	return s.state.Load().(*lifecycleState)
}

// Put stores a new active frame and returns its assigned id.
func (s *LifecycleStore) Put(payload []byte, timestamp uint64) uint64 {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id := s.nextID
	s.nextID++

	old := s.load()
	meta := old.meta.Set(id, Metadata{ID: id, Timestamp: timestamp, Status: StatusActive})
	payloads := old.payloads.Set(id, payload)
	s.state.Store(&lifecycleState{meta: meta, payloads: payloads})
	return id
}

// Delete flips a frame's status to Deleted and evicts its payload. Deleting
// an unknown id is a no-op.
func (s *LifecycleStore) Delete(id uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.load()
	m, ok := old.meta.Get(id)
	if !ok {
		return
	}
	m.Status = StatusDeleted
	meta := old.meta.Set(id, m)
	payloads := old.payloads.Delete(id)
	s.state.Store(&lifecycleState{meta: meta, payloads: payloads})
}

// Supersede links old -> new: old.SupersededBy = new, new.Supersedes = old.
// Each side is updated independently; if one id is absent, only the other
// side's link (if any) is applied.
func (s *LifecycleStore) Supersede(oldID, newID uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.load()
	meta := old.meta

	if m, ok := meta.Get(oldID); ok {
		n := newID
		m.SupersededBy = &n
		meta = meta.Set(oldID, m)
	}
	if m, ok := meta.Get(newID); ok {
		o := oldID
		m.Supersedes = &o
		meta = meta.Set(newID, m)
	}

	s.state.Store(&lifecycleState{meta: meta, payloads: old.payloads})
}

// GetVisible returns (payload, metadata, true) iff the frame is Active and
// not superseded.
func (s *LifecycleStore) GetVisible(id uint64) ([]byte, Metadata, bool) {
	snap := s.load()
	m, ok := snap.meta.Get(id)
	if !ok || m.Status != StatusActive || m.SupersededBy != nil {
		return nil, Metadata{}, false
	}
	payload, _ := snap.payloads.Get(id)
	return payload, m, true
}

// Timeline returns active frame metadata ordered ascending by timestamp,
// with insertion order (ascending id) as the tiebreak. When
// includeSuperseded is false, frames with a SupersededBy link are omitted.
func (s *LifecycleStore) Timeline(includeSuperseded bool) []Metadata {
	snap := s.load()
	out := make([]Metadata, 0, snap.meta.Len())

	itr := snap.meta.Iterator()
	for !itr.Done() {
		_, m, _ := itr.Next()
		if m.Status != StatusActive {
			continue
		}
		if !includeSuperseded && m.SupersededBy != nil {
			continue
		}
		out = append(out, m)
	}

	sortMetadataByTimestamp(out)
	return out
}

// AllMetadata returns every frame's metadata regardless of status,
// ascending by id, for durable-store flush (which must persist deleted
// frames' tombstones too, not just the active timeline).
func (s *LifecycleStore) AllMetadata() []Metadata {
	snap := s.load()
	out := make([]Metadata, 0, snap.meta.Len())
	itr := snap.meta.Iterator()
	for !itr.Done() {
		_, m, _ := itr.Next()
		out = append(out, m)
	}
	return out
}

// AllPayloads returns a snapshot of every payload currently retained
// (Deleted frames have none, since Delete evicts their payload), for
// segment persistence on commit.
func (s *LifecycleStore) AllPayloads() map[uint64][]byte {
	snap := s.load()
	out := make(map[uint64][]byte, snap.payloads.Len())
	itr := snap.payloads.Iterator()
	for !itr.Done() {
		id, payload, _ := itr.Next()
		out[id] = payload
	}
	return out
}

// Restore replaces the store's contents with metas (as persisted by the
// durable store) plus payloads (recovered from sealed segments), and
// advances nextID past the highest id seen in
// either set. It is the recovery-path counterpart to Put/Delete/Supersede,
// used once at session open rather than during normal operation.
func (s *LifecycleStore) Restore(metas []Metadata, payloads map[uint64][]byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	meta := immutable.NewSortedMap[uint64, Metadata](uint64Comparer{})
	var maxID uint64
	for _, m := range metas {
		meta = meta.Set(m.ID, m)
		if m.ID > maxID {
			maxID = m.ID
		}
	}

	pl := immutable.NewSortedMap[uint64, []byte](uint64Comparer{})
	for id, payload := range payloads {
		pl = pl.Set(id, payload)
		if id > maxID {
			maxID = id
		}
	}

	s.state.Store(&lifecycleState{meta: meta, payloads: pl})
	s.nextID = maxID + 1
}

// sortMetadataByTimestamp sorts ascending by timestamp, breaking ties by
// ascending id (the iterator already yields ascending id, so a stable sort
// preserves that as the tiebreak).
func sortMetadataByTimestamp(metas []Metadata) {
	// insertion sort: timelines are small relative to total frame volume
	// and this keeps the tiebreak stability explicit and easy to audit.
	for i := 1; i < len(metas); i++ {
		j := i
		for j > 0 && metas[j-1].Timestamp > metas[j].Timestamp {
			metas[j-1], metas[j] = metas[j], metas[j-1]
			j--
		}
	}
}
