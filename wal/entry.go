// Package wal implements the append-only, sequenced, capacity-bounded
// ring of WAL records, plus the replay logic used to rebuild an in-memory
// working set after a crash.
package wal

import (
	"errors"
	"fmt"

	"github.com/raxdb/rax/codec"
)

// Entry tags. Wire form: tag[1] | frame_id[8] | (payload_len[4] payload[n])?
const (
	tagPutFrame    uint8 = 1
	tagDeleteFrame uint8 = 2
)

// ErrUnknownTag is returned when decoding an entry whose tag byte is
// neither PutFrame nor DeleteFrame.
var ErrUnknownTag = errors.New("wal: unknown entry tag")

// Entry is a single WAL operation: either a frame write (with its payload)
// or a frame deletion.
type Entry struct {
	Kind    EntryKind
	FrameID uint64
	Payload []byte // only meaningful when Kind == EntryPutFrame
}

// EntryKind discriminates the two WAL entry variants.
type EntryKind uint8

const (
	EntryPutFrame EntryKind = iota
	EntryDeleteFrame
)

// PutFrame constructs a PutFrame entry.
func PutFrame(frameID uint64, payload []byte) Entry {
	return Entry{Kind: EntryPutFrame, FrameID: frameID, Payload: payload}
}

// DeleteFrame constructs a DeleteFrame entry.
func DeleteFrame(frameID uint64) Entry {
	return Entry{Kind: EntryDeleteFrame, FrameID: frameID}
}

// Encode serializes the entry to its wire form.
func (e Entry) Encode() []byte {
	enc := codec.NewEncoder()
	switch e.Kind {
	case EntryPutFrame:
		enc.PutU8(tagPutFrame)
		enc.PutU64(e.FrameID)
		enc.PutBytes(e.Payload)
	case EntryDeleteFrame:
		enc.PutU8(tagDeleteFrame)
		enc.PutU64(e.FrameID)
	}
	return enc.Bytes()
}

// DecodeEntry parses a WAL entry from its wire form.
func DecodeEntry(b []byte) (Entry, error) {
	dec := codec.NewDecoder(b)
	tag, err := dec.GetU8()
	if err != nil {
		return Entry{}, err
	}
	frameID, err := dec.GetU64()
	if err != nil {
		return Entry{}, err
	}
	switch tag {
	case tagPutFrame:
		payload, err := dec.GetBytes()
		if err != nil {
			return Entry{}, err
		}
		return PutFrame(frameID, payload), nil
	case tagDeleteFrame:
		return DeleteFrame(frameID), nil
	default:
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownTag, tag)
	}
}
