package backup

// RestorePITR selects the point-in-time restore target: among manifests
// whose wal_end_seq does not exceed targetWalSeq, the one with the
// largest wal_end_seq. Returns ("", false) if none qualify.
func RestorePITR(manifests []Manifest, targetWalSeq uint64) (string, bool) {
	var best *Manifest
	for i := range manifests {
		m := &manifests[i]
		if m.WalEndSeq > targetWalSeq {
			continue
		}
		if best == nil || m.WalEndSeq >= best.WalEndSeq {
			best = m
		}
	}
	if best == nil {
		return "", false
	}
	return best.SnapshotID, true
}
