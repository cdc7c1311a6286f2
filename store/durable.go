package store

import (
	"encoding/binary"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	bolt "go.etcd.io/bbolt"
)

var (
	metaBucket   = []byte("frame_meta")
	miscBucket   = []byte("misc")
	watermarkKey = []byte("committed_seq")
)

// DurableError wraps any failure surfaced from the backing bbolt database,
// matching the session package's DurableStoreIo taxonomy.
type DurableError struct {
	Op  string
	Err error
}

func (e *DurableError) Error() string { return fmt.Sprintf("durable store: %s: %v", e.Op, e.Err) }
func (e *DurableError) Unwrap() error { return e.Err }

// DurableStore persists lifecycle-store snapshots and the WAL commit
// watermark to a bbolt file.
type DurableStore struct {
	db     *bolt.DB
	logger log.Logger
}

// OpenDurableStore opens (creating if absent) a bbolt database at path.
func OpenDurableStore(path string, logger log.Logger) (*DurableStore, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, &DurableError{Op: "open", Err: err}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(metaBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(miscBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, &DurableError{Op: "init", Err: err}
	}
	return &DurableStore{db: db, logger: logger}, nil
}

// Close releases the underlying bbolt file handle.
func (d *DurableStore) Close() error {
	return d.db.Close()
}

// Flush persists the given lifecycle metadata snapshot and watermark
// transactionally. committedSeq is stored as given; Flush does not compare
// it against what the WAL ring still retains.
func (d *DurableStore) Flush(metas []Metadata, committedSeq uint64) error {
	err := d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(metaBucket); err != nil {
			return err
		}
		mb, err := tx.CreateBucket(metaBucket)
		if err != nil {
			return err
		}
		for _, m := range metas {
			key := make([]byte, 8)
			binary.LittleEndian.PutUint64(key, m.ID)
			if err := mb.Put(key, encodeMetadata(m)); err != nil {
				return err
			}
		}

		misc := tx.Bucket(miscBucket)
		wk := make([]byte, 8)
		binary.LittleEndian.PutUint64(wk, committedSeq)
		return misc.Put(watermarkKey, wk)
	})
	if err != nil {
		level.Error(d.logger).Log("msg", "durable store flush failed", "err", err)
		return &DurableError{Op: "flush", Err: err}
	}
	level.Debug(d.logger).Log("msg", "durable store flushed", "frames", len(metas), "committed_seq", committedSeq)
	return nil
}

// LoadWatermark returns the last persisted WAL commit watermark, or 0 if
// none has been flushed yet.
func (d *DurableStore) LoadWatermark() (uint64, error) {
	var watermark uint64
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(miscBucket).Get(watermarkKey)
		if v == nil {
			return nil
		}
		watermark = binary.LittleEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, &DurableError{Op: "load_watermark", Err: err}
	}
	return watermark, nil
}

// LoadMetadata returns every persisted frame metadata record.
func (d *DurableStore) LoadMetadata() ([]Metadata, error) {
	var out []Metadata
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).ForEach(func(_, v []byte) error {
			m, err := decodeMetadata(v)
			if err != nil {
				return err
			}
			out = append(out, m)
			return nil
		})
	})
	if err != nil {
		return nil, &DurableError{Op: "load_metadata", Err: err}
	}
	return out, nil
}

func encodeMetadata(m Metadata) []byte {
	buf := make([]byte, 0, 26)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], m.ID)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], m.Timestamp)
	buf = append(buf, tmp[:]...)
	buf = append(buf, byte(m.Status))
	buf = append(buf, encodeOptionalID(m.Supersedes)...)
	buf = append(buf, encodeOptionalID(m.SupersededBy)...)
	return buf
}

func encodeOptionalID(id *uint64) []byte {
	if id == nil {
		return []byte{0}
	}
	out := make([]byte, 9)
	out[0] = 1
	binary.LittleEndian.PutUint64(out[1:], *id)
	return out
}

func decodeMetadata(b []byte) (Metadata, error) {
	if len(b) < 17 {
		return Metadata{}, fmt.Errorf("metadata record too short: %d bytes", len(b))
	}
	m := Metadata{
		ID:        binary.LittleEndian.Uint64(b[0:8]),
		Timestamp: binary.LittleEndian.Uint64(b[8:16]),
		Status:    FrameStatus(b[16]),
	}
	rest := b[17:]
	var err error
	m.Supersedes, rest, err = decodeOptionalID(rest)
	if err != nil {
		return Metadata{}, err
	}
	m.SupersededBy, _, err = decodeOptionalID(rest)
	if err != nil {
		return Metadata{}, err
	}
	return m, nil
}

func decodeOptionalID(b []byte) (*uint64, []byte, error) {
	if len(b) < 1 {
		return nil, nil, fmt.Errorf("optional id record too short")
	}
	if b[0] == 0 {
		return nil, b[1:], nil
	}
	if len(b) < 9 {
		return nil, nil, fmt.Errorf("optional id record too short")
	}
	id := binary.LittleEndian.Uint64(b[1:9])
	return &id, b[9:], nil
}
