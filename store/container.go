package store

import (
	"os"

	"github.com/raxdb/rax/format"
)

// WriteContainer assembles a full MV2S container — two identical header
// pages (this store is single-writer, so there is no torn-write race
// between them to reconcile on the write side; the dual-header scheme
// pays off on the read side, after a crash mid-write), the segment body,
// a TOC page, and a footer — and writes it to path.
func WriteContainer(path string, generation uint64, body []byte, frameCount uint64) error {
	tocOffset := uint64(2*format.HeaderPageSize) + uint64(len(body))
	hdr := format.Header{Generation: generation, TocOffset: tocOffset}
	hdrBytes := hdr.Encode()
	toc := format.Toc{FrameCount: frameCount}
	footer := format.Footer{Generation: generation, TocOffset: tocOffset}

	buf := make([]byte, 0, len(hdrBytes)*2+len(body)+format.TocPageSize+format.FooterPageSize)
	buf = append(buf, hdrBytes...)
	buf = append(buf, hdrBytes...)
	buf = append(buf, body...)
	buf = append(buf, toc.Encode()...)
	buf = append(buf, footer.Encode()...)
	return os.WriteFile(path, buf, 0o600)
}

// ReadContainer opens a sealed MV2S container, validates its dual-header
// generation/TOC agreement via format.ValidateOpen, and returns the
// segment body bytes plus the TOC's declared frame count.
func ReadContainer(path string) (body []byte, frameCount uint64, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	minLen := 2*format.HeaderPageSize + format.FooterPageSize
	if len(raw) < minLen {
		return nil, 0, format.ErrInvalidLength
	}

	pageA := raw[0:format.HeaderPageSize]
	pageB := raw[format.HeaderPageSize : 2*format.HeaderPageSize]
	footerBytes := raw[len(raw)-format.FooterPageSize:]

	state, err := format.ValidateOpen(pageA, pageB, footerBytes)
	if err != nil {
		return nil, 0, err
	}
	// ValidateOpen only enforces toc_offset >= MinTocOffset; the body of
	// this container starts after both header pages, so a checksum-valid
	// toc_offset below that is still out of bounds here.
	if state.TocOffset < uint64(2*format.HeaderPageSize) {
		return nil, 0, format.ErrInvalidLength
	}
	if int(state.TocOffset)+format.TocPageSize > len(raw) {
		return nil, 0, format.ErrInvalidLength
	}

	tocBytes := raw[state.TocOffset : int(state.TocOffset)+format.TocPageSize]
	toc, err := format.DecodeToc(tocBytes)
	if err != nil {
		return nil, 0, err
	}

	body = raw[2*format.HeaderPageSize : state.TocOffset]
	return body, toc.FrameCount, nil
}
