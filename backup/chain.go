package backup

// VerifyChain reports whether manifests forms a valid backup chain: empty
// is trivially valid, and for every manifest after the first, its
// BaseSnapshotID must equal the previous manifest's SnapshotID and its
// wal_start_seq must not exceed its wal_end_seq.
func VerifyChain(manifests []Manifest) bool {
	for i := 1; i < len(manifests); i++ {
		prev := manifests[i-1]
		cur := manifests[i]
		if cur.BaseSnapshotID == nil || *cur.BaseSnapshotID != prev.SnapshotID {
			return false
		}
		if cur.WalStartSeq > cur.WalEndSeq {
			return false
		}
	}
	return true
}

// InterruptedChainDetected is the negation of VerifyChain.
func InterruptedChainDetected(manifests []Manifest) bool {
	return !VerifyChain(manifests)
}
