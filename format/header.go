package format

import "encoding/binary"

// Header is the MV2S header page. Two of these exist at fixed offsets at
// the front of the container; open validation picks the fresher one by
// generation and the footer settles ties and torn writes.
type Header struct {
	Generation uint64
	TocOffset  uint64
	Reserved   uint64
}

// Encode writes the 32-byte header page: magic, generation, toc_offset,
// reserved, then a checksum over everything preceding it.
func (h Header) Encode() []byte {
	out := make([]byte, 0, HeaderPageSize)
	out = append(out, headerMagic[:]...)
	out = appendU64(out, h.Generation)
	out = appendU64(out, h.TocOffset)
	out = appendU64(out, h.Reserved)
	csum := Checksum(out)
	out = appendU32(out, csum)
	return out
}

// DecodeHeader parses a 32-byte header page, validating its magic and
// checksum.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderPageSize {
		return Header{}, ErrInvalidLength
	}
	if [4]byte(b[0:4]) != headerMagic {
		return Header{}, ErrInvalidMagic
	}
	expected := Checksum(b[:28])
	actual := binary.LittleEndian.Uint32(b[28:32])
	if expected != actual {
		return Header{}, ErrChecksumMismatch
	}
	return Header{
		Generation: binary.LittleEndian.Uint64(b[4:12]),
		TocOffset:  binary.LittleEndian.Uint64(b[12:20]),
		Reserved:   binary.LittleEndian.Uint64(b[20:28]),
	}, nil
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendU64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}
