package format

import "encoding/binary"

// Toc is the MV2S table of contents page. It names how many frames the
// container holds; the frame index itself lives in the segment body.
type Toc struct {
	FrameCount uint64
}

// Encode writes the 16-byte TOC page.
func (t Toc) Encode() []byte {
	out := make([]byte, 0, TocPageSize)
	out = append(out, tocMagic[:]...)
	out = appendU64(out, t.FrameCount)
	csum := Checksum(out)
	out = appendU32(out, csum)
	return out
}

// DecodeToc parses a 16-byte TOC page.
func DecodeToc(b []byte) (Toc, error) {
	if len(b) != TocPageSize {
		return Toc{}, ErrInvalidLength
	}
	if [4]byte(b[0:4]) != tocMagic {
		return Toc{}, ErrInvalidMagic
	}
	expected := Checksum(b[:12])
	actual := binary.LittleEndian.Uint32(b[12:16])
	if expected != actual {
		return Toc{}, ErrChecksumMismatch
	}
	return Toc{FrameCount: binary.LittleEndian.Uint64(b[4:12])}, nil
}
