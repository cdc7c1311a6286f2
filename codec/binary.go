// Package codec implements the length-prefixed little-endian binary wire
// format shared by the MV2S container, WAL entries, and segment frames.
package codec

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

// Decode errors. These are returned by Decoder methods and are fatal to the
// caller but never corrupt in-memory state, since decoding never mutates
// anything but the decoder's own cursor.
var (
	ErrUnexpectedEOF  = errors.New("codec: unexpected eof")
	ErrInvalidUTF8    = errors.New("codec: invalid utf8")
	ErrLengthOverflow = errors.New("codec: length overflow")
)

// Encoder appends primitives to an internal buffer in the container's
// wire format: u8 is one byte, u32/u64 are little-endian, bytes
// is a u32 length prefix followed by the raw octets, and string is bytes
// interpreted as UTF-8.
type Encoder struct {
	out []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// PutU8 appends a single byte.
func (e *Encoder) PutU8(v uint8) {
	e.out = append(e.out, v)
}

// PutU32 appends v as 4 little-endian bytes.
func (e *Encoder) PutU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.out = append(e.out, b[:]...)
}

// PutU64 appends v as 8 little-endian bytes.
func (e *Encoder) PutU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.out = append(e.out, b[:]...)
}

// PutBytes appends a u32 length prefix followed by b.
func (e *Encoder) PutBytes(b []byte) {
	e.PutU32(uint32(len(b)))
	e.out = append(e.out, b...)
}

// PutString appends s as PutBytes(s) would, interpreting s as UTF-8.
func (e *Encoder) PutString(s string) {
	e.PutBytes([]byte(s))
}

// Bytes returns the encoded buffer. The Encoder must not be reused after
// calling Bytes if the caller retains the slice.
func (e *Encoder) Bytes() []byte {
	return e.out
}

// Decoder reads primitives out of a byte slice in the same wire format as
// Encoder produces, failing with a typed error on any malformed input.
type Decoder struct {
	buf []byte
	at  int
}

// NewDecoder returns a Decoder positioned at the start of buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// GetU8 reads a single byte.
func (d *Decoder) GetU8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// GetU32 reads 4 little-endian bytes.
func (d *Decoder) GetU32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// GetU64 reads 8 little-endian bytes.
func (d *Decoder) GetU64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// GetBytes reads a u32 length prefix followed by that many raw bytes. The
// returned slice is a copy; it does not alias the decoder's input buffer.
func (d *Decoder) GetBytes() ([]byte, error) {
	n, err := d.GetU32()
	if err != nil {
		return nil, err
	}
	b, err := d.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// GetString reads bytes and validates them as UTF-8.
func (d *Decoder) GetString() (string, error) {
	b, err := d.GetBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// Remaining reports how many bytes are left unconsumed.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.at
}

func (d *Decoder) take(n int) ([]byte, error) {
	end := d.at + n
	if end < d.at {
		// d.at + n overflowed int.
		return nil, ErrLengthOverflow
	}
	if end > len(d.buf) {
		return nil, ErrUnexpectedEOF
	}
	b := d.buf[d.at:end]
	d.at = end
	return b, nil
}
