package wal

import (
	"sync"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
)

// Record pairs a strictly-monotonic sequence number with the entry that was
// appended at that sequence.
type Record struct {
	Sequence uint64
	Entry    Entry
}

// ringState is the immutable snapshot readers see. A new snapshot replaces
// the old one on every append or compaction; readers that already loaded a
// snapshot keep reading a consistent view even while a writer is building
// the next one.
type ringState struct {
	records []Record
}

// Ring is a capacity-bounded, single-writer, many-reader append log of WAL
// records. Appends beyond capacity evict the oldest records (FIFO);
// compaction only ever removes records the ring still retains.
type Ring struct {
	capacity int
	logger   log.Logger
	metrics  *Metrics

	writeMu      sync.Mutex // held across append/compact; the single-writer lease
	nextSequence uint64     // only touched under writeMu
	state        atomic.Value
}

// NewRing constructs a Ring with the given capacity, clamped to at least 1.
func NewRing(capacity int, logger log.Logger, reg prometheus.Registerer) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	r := &Ring{
		capacity:     capacity,
		logger:       logger,
		metrics:      newMetrics(reg),
		nextSequence: 1,
	}
	r.state.Store(&ringState{})
	return r
}

func (r *Ring) load() *ringState {
	return r.state.Load().(*ringState)
}

// Append assigns the next sequence number to entry, appends it, and evicts
// the oldest records if the ring is now over capacity. It returns the
// assigned sequence.
func (r *Ring) Append(entry Entry) uint64 {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	seq := r.nextSequence
	r.nextSequence++

	old := r.load()
	records := make([]Record, len(old.records), len(old.records)+1)
	copy(records, old.records)
	records = append(records, Record{Sequence: seq, Entry: entry})

	if len(records) > r.capacity {
		overflow := len(records) - r.capacity
		dropped := records[:overflow]
		records = records[overflow:]
		r.metrics.ringDrops.Add(float64(overflow))
		level.Warn(r.logger).Log("msg", "wal ring at capacity, dropping oldest records",
			"dropped", overflow, "oldest_dropped_seq", dropped[0].Sequence,
			"newest_dropped_seq", dropped[len(dropped)-1].Sequence)
	}

	r.state.Store(&ringState{records: records})
	r.metrics.appends.Inc()
	r.metrics.entriesWritten.Inc()
	return seq
}

// Records returns a read-only, sequence-ascending snapshot of the ring's
// current contents. The returned slice must not be mutated by the caller.
func (r *Ring) Records() []Record {
	return r.load().records
}

// MinRetainedSequence returns the smallest sequence number still present in
// the ring, or 0 if the ring is empty.
func (r *Ring) MinRetainedSequence() uint64 {
	records := r.load().records
	if len(records) == 0 {
		return 0
	}
	return records[0].Sequence
}

// Compact removes every record with sequence <= committedSeq and returns
// the count removed. Records already dropped by FIFO eviction are not
// counted: the return value only reflects records the ring still held.
func (r *Ring) Compact(committedSeq uint64) int {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	old := r.load()
	if len(old.records) == 0 {
		return 0
	}

	cut := 0
	for cut < len(old.records) && old.records[cut].Sequence <= committedSeq {
		cut++
	}
	if cut == 0 {
		return 0
	}

	records := make([]Record, len(old.records)-cut)
	copy(records, old.records[cut:])
	r.state.Store(&ringState{records: records})
	r.metrics.compactions.Inc()
	r.metrics.entriesCompacted.Add(float64(cut))
	level.Debug(r.logger).Log("msg", "wal compacted", "removed", cut, "committed_seq", committedSeq)
	return cut
}

// Capacity returns the ring's configured capacity.
func (r *Ring) Capacity() int {
	return r.capacity
}

// Tip returns the sequence number most recently assigned by Append, or 0
// if nothing has been appended yet. Callers use this as the watermark to
// flush and compact up to.
func (r *Ring) Tip() uint64 {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.nextSequence - 1
}
