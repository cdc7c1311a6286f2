package format

import "encoding/binary"

// Footer is the MV2S footer page at the tail of the container. It repeats
// the selected header's (generation, toc_offset) and is the authoritative
// tie-breaker when validating which header survived a torn write.
type Footer struct {
	Generation uint64
	TocOffset  uint64
}

// Encode writes the 24-byte footer page.
func (f Footer) Encode() []byte {
	out := make([]byte, 0, FooterPageSize)
	out = append(out, footerMagic[:]...)
	out = appendU64(out, f.Generation)
	out = appendU64(out, f.TocOffset)
	csum := Checksum(out)
	out = appendU32(out, csum)
	return out
}

// DecodeFooter parses a 24-byte footer page.
func DecodeFooter(b []byte) (Footer, error) {
	if len(b) != FooterPageSize {
		return Footer{}, ErrInvalidLength
	}
	if [4]byte(b[0:4]) != footerMagic {
		return Footer{}, ErrInvalidMagic
	}
	expected := Checksum(b[:20])
	actual := binary.LittleEndian.Uint32(b[20:24])
	if expected != actual {
		return Footer{}, ErrChecksumMismatch
	}
	return Footer{
		Generation: binary.LittleEndian.Uint64(b[4:12]),
		TocOffset:  binary.LittleEndian.Uint64(b[12:20]),
	}, nil
}
