package format

// OpenState is the outcome of a successful ValidateOpen: the generation and
// toc_offset the caller should treat as authoritative.
type OpenState struct {
	Generation uint64
	TocOffset  uint64
}

// ValidateOpen implements the dual-header crash-safety check: decode both
// header pages, select the one with the larger
// generation (ties favor pageA), fall back to whichever one decoded if
// only one did, and fail NoValidHeader if neither did. The footer is then
// decoded and must agree with the selected header on both generation and
// toc_offset; toc_offset must additionally be at least MinTocOffset (one
// header page). Callers that place both header pages before the body
// check their own, larger bound.
func ValidateOpen(pageA, pageB, footer []byte) (OpenState, error) {
	hdrA, errA := DecodeHeader(pageA)
	hdrB, errB := DecodeHeader(pageB)

	var selected Header
	switch {
	case errA == nil && errB == nil:
		if hdrA.Generation >= hdrB.Generation {
			selected = hdrA
		} else {
			selected = hdrB
		}
	case errA == nil:
		selected = hdrA
	case errB == nil:
		selected = hdrB
	default:
		return OpenState{}, ErrNoValidHeader
	}

	foot, err := DecodeFooter(footer)
	if err != nil {
		return OpenState{}, err
	}
	if foot.Generation != selected.Generation {
		return OpenState{}, ErrGenerationMismatch
	}
	if foot.TocOffset != selected.TocOffset {
		return OpenState{}, ErrTocOffsetMismatch
	}
	if selected.TocOffset < MinTocOffset {
		return OpenState{}, ErrTocOffsetOutOfRange
	}

	return OpenState{Generation: selected.Generation, TocOffset: selected.TocOffset}, nil
}
