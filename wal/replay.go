package wal

// ReplayPendingPuts rebuilds the post-recovery uncommitted working set by
// applying every record with Sequence > committedSeq, in order: PutFrame
// inserts or overwrites the frame's payload, DeleteFrame removes it. Later
// records win.
func ReplayPendingPuts(records []Record, committedSeq uint64) map[uint64][]byte {
	out := make(map[uint64][]byte)
	for _, rec := range records {
		if rec.Sequence <= committedSeq {
			continue
		}
		switch rec.Entry.Kind {
		case EntryPutFrame:
			out[rec.Entry.FrameID] = rec.Entry.Payload
		case EntryDeleteFrame:
			delete(out, rec.Entry.FrameID)
		}
	}
	return out
}
