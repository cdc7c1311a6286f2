// Package segment implements the MV2S container's frame body storage: an
// append-only sequence of (frame header, payload) pairs plus a trailing
// index block mapping frame id to byte offset, so a sealed segment can be
// opened and read back without replaying the whole file. Segment file names
// are the unit backup manifests name in changed_segments.
package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/raxdb/rax/codec"
)

// ErrNotFound is returned by Reader.Frame when the requested frame id is
// not present in this segment.
var ErrNotFound = errors.New("segment: frame not found")

// ErrCorrupt is returned when a frame header fails to parse.
var ErrCorrupt = errors.New("segment: corrupt frame header")

const frameHeaderLen = 8 + 4 // frame_id[8] + payload_len[4]

// Writer accumulates frames into an in-memory buffer, tracking the byte
// offset of each so an index block can be appended once the segment is
// sealed.
type Writer struct {
	buf     []byte
	offsets map[uint64]uint32
	order   []uint64
}

// NewWriter returns an empty segment Writer.
func NewWriter() *Writer {
	return &Writer{offsets: make(map[uint64]uint32)}
}

// Append writes one frame (id + payload) to the segment body and records
// its offset for the index block. Appending the same id twice overwrites
// its offset (last write wins on Seal).
func (w *Writer) Append(frameID uint64, payload []byte) {
	offset := uint32(len(w.buf))
	var hdr [frameHeaderLen]byte
	binary.LittleEndian.PutUint64(hdr[0:8], frameID)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(payload)))
	w.buf = append(w.buf, hdr[:]...)
	w.buf = append(w.buf, payload...)

	if _, exists := w.offsets[frameID]; !exists {
		w.order = append(w.order, frameID)
	}
	w.offsets[frameID] = offset
}

// Seal finalizes the segment: body bytes followed by a sorted index block
// (frame_id[8] | offset[4] per entry) and a frame count trailer, so a
// reader can binary-search the index without decoding the body.
func (w *Writer) Seal() []byte {
	ids := make([]uint64, len(w.order))
	copy(ids, w.order)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]byte, len(w.buf))
	copy(out, w.buf)

	indexStart := uint32(len(out))
	for _, id := range ids {
		var entry [12]byte
		binary.LittleEndian.PutUint64(entry[0:8], id)
		binary.LittleEndian.PutUint32(entry[8:12], w.offsets[id])
		out = append(out, entry[:]...)
	}

	enc := codec.NewEncoder()
	enc.PutU32(indexStart)
	enc.PutU32(uint32(len(ids)))
	out = append(out, enc.Bytes()...)
	return out
}

// FrameCount reports how many distinct frame ids have been appended.
func (w *Writer) FrameCount() int {
	return len(w.order)
}

// Reader opens a sealed segment for random-access reads by frame id.
type Reader struct {
	body       []byte
	index      map[uint64]uint32
	indexStart uint32
}

// OpenReader parses a sealed segment's trailing index block and returns a
// Reader over it.
func OpenReader(sealed []byte) (*Reader, error) {
	if len(sealed) < 8 {
		return nil, ErrCorrupt
	}
	trailer := sealed[len(sealed)-8:]
	dec := codec.NewDecoder(trailer)
	indexStart, err := dec.GetU32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	count, err := dec.GetU32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	indexBytes := sealed[indexStart : len(sealed)-8]
	if uint32(len(indexBytes)) != count*12 {
		return nil, ErrCorrupt
	}

	index := make(map[uint64]uint32, count)
	for i := uint32(0); i < count; i++ {
		entry := indexBytes[i*12 : i*12+12]
		id := binary.LittleEndian.Uint64(entry[0:8])
		offset := binary.LittleEndian.Uint32(entry[8:12])
		index[id] = offset
	}

	return &Reader{body: sealed[:indexStart], index: index, indexStart: indexStart}, nil
}

// Frame returns the payload stored for frameID, or ErrNotFound.
func (r *Reader) Frame(frameID uint64) ([]byte, error) {
	offset, ok := r.index[frameID]
	if !ok {
		return nil, ErrNotFound
	}
	if int(offset)+frameHeaderLen > len(r.body) {
		return nil, ErrCorrupt
	}
	hdr := r.body[offset : offset+frameHeaderLen]
	gotID := binary.LittleEndian.Uint64(hdr[0:8])
	if gotID != frameID {
		return nil, ErrCorrupt
	}
	payloadLen := binary.LittleEndian.Uint32(hdr[8:12])
	start := int(offset) + frameHeaderLen
	end := start + int(payloadLen)
	if end > len(r.body) {
		return nil, ErrCorrupt
	}
	return r.body[start:end], nil
}

// FrameIDs returns every frame id present in the segment, ascending.
func (r *Reader) FrameIDs() []uint64 {
	ids := make([]uint64, 0, len(r.index))
	for id := range r.index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
