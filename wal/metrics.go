package wal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ring activity: one promauto counter per observable
// event, constructed once per Ring.
type Metrics struct {
	appends          prometheus.Counter
	entriesWritten   prometheus.Counter
	ringDrops        prometheus.Counter
	compactions      prometheus.Counter
	entriesCompacted prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		appends: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rax_wal_appends_total",
			Help: "rax_wal_appends_total counts calls to Ring.Append.",
		}),
		entriesWritten: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rax_wal_entries_written_total",
			Help: "rax_wal_entries_written_total counts WAL entries appended.",
		}),
		ringDrops: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rax_wal_ring_drops_total",
			Help: "rax_wal_ring_drops_total counts records silently evicted by ring overflow.",
		}),
		compactions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rax_wal_compactions_total",
			Help: "rax_wal_compactions_total counts calls to Ring.Compact.",
		}),
		entriesCompacted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rax_wal_entries_compacted_total",
			Help: "rax_wal_entries_compacted_total counts records removed by compaction.",
		}),
	}
}
