package backup

// RestoreState names the snapshots applied, in order, to reach the
// restored state.
type RestoreState struct {
	AppliedSnapshots []string
}

// RestoreFull returns the RestoreState for restoring directly from a base
// (non-incremental) manifest.
func RestoreFull(base Manifest) RestoreState {
	return RestoreState{AppliedSnapshots: []string{base.SnapshotID}}
}

// RestoreIncremental verifies chain and, if valid, returns the
// RestoreState applying every manifest's snapshot in order. Returns false
// if the chain is broken.
func RestoreIncremental(chain []Manifest) (RestoreState, bool) {
	if !VerifyChain(chain) {
		return RestoreState{}, false
	}
	ids := make([]string, len(chain))
	for i, m := range chain {
		ids[i] = m.SnapshotID
	}
	return RestoreState{AppliedSnapshots: ids}, true
}
