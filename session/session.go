package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/raxdb/rax/fusion"
	"github.com/raxdb/rax/lexical"
	"github.com/raxdb/rax/segment"
	"github.com/raxdb/rax/store"
	"github.com/raxdb/rax/vectorindex"
	"github.com/raxdb/rax/wal"
)

// defaultRingCapacity bounds the in-memory WAL ring.
const defaultRingCapacity = 4096

// StageReport is the snapshot returned by Stage/Commit: counts pending at
// the moment staging ran, before the pending counter is zeroed.
type StageReport struct {
	PendingTextEntries int
	Compacted          int
}

// Metrics tracks session-level ingest/commit activity, shaped after
// wal.Metrics: one promauto counter per observable event.
type Metrics struct {
	remembers      prometheus.Counter
	commits        prometheus.Counter
	commitFailures prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		remembers: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rax_session_remembers_total",
			Help: "rax_session_remembers_total counts successful Remember/RememberWithEmbedding calls.",
		}),
		commits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rax_session_commits_total",
			Help: "rax_session_commits_total counts successful Commit calls.",
		}),
		commitFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rax_session_commit_failures_total",
			Help: "rax_session_commit_failures_total counts Commit calls that surfaced DurableStoreIo.",
		}),
	}
}

// Session orchestrates ingest through the WAL, the lifecycle store, and
// the vector/lexical/structured lanes, and owns the single-writer
// discipline: leaseMu is the exclusive lease for
// mutations, while reads (Recall/RecallSemantic/Search) only take a
// shared lease so they can proceed concurrently with each other.
type Session struct {
	mode    Mode
	config  Config
	logger  log.Logger
	metrics *Metrics

	storeRoot   string
	segmentsDir string

	leaseMu sync.RWMutex

	ring      *wal.Ring
	lifecycle *store.LifecycleStore
	durable   *store.DurableStore

	vector         vectorindex.Engine
	vectorDim      *int
	vectorMemories map[uint64]string

	memories     []string
	lexicalIndex *lexical.Engine
	structured   *StructuredMemory
	surrogates   *surrogateMaintenance

	nextTimestamp uint64
	pending       int
	segmentSeq    uint64
	segments      []string
}

// DefaultVectorEngine returns the hybrid backend (exact primary/rerank +
// ANN secondary) a session uses when the caller doesn't supply its own.
func DefaultVectorEngine() vectorindex.Engine {
	return vectorindex.NewHybrid(vectorindex.NewExact(), vectorindex.NewANN(vectorindex.DefaultConfig()), vectorindex.DefaultHybridConfig())
}

// NewSession opens (creating if absent) a durable store rooted at
// storeRoot and returns a Session ready to serve mode's operations.
// vector may be nil; if config.EnableVectorSearch is true, DefaultVectorEngine
// is used in its place.
func NewSession(storeRoot string, mode Mode, config Config, vector vectorindex.Engine, logger log.Logger, reg prometheus.Registerer) (*Session, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if config.EnableVectorSearch && vector == nil {
		vector = DefaultVectorEngine()
	}

	if err := os.MkdirAll(storeRoot, 0o755); err != nil {
		return nil, errDurableStoreIo(err.Error())
	}
	segmentsDir := filepath.Join(storeRoot, "segments")
	if err := os.MkdirAll(segmentsDir, 0o755); err != nil {
		return nil, errDurableStoreIo(err.Error())
	}

	durable, err := store.OpenDurableStore(filepath.Join(storeRoot, "rax.db"), logger)
	if err != nil {
		return nil, errDurableStoreIo(err.Error())
	}

	watermark, err := durable.LoadWatermark()
	if err != nil {
		durable.Close()
		return nil, errDurableStoreIo(err.Error())
	}
	persistedMeta, err := durable.LoadMetadata()
	if err != nil {
		durable.Close()
		return nil, errDurableStoreIo(err.Error())
	}

	segmentNames, payloads, err := recoverSegments(segmentsDir)
	if err != nil {
		durable.Close()
		return nil, errDurableStoreIo(err.Error())
	}
	level.Debug(logger).Log("msg", "recovered durable state", "committed_seq", watermark, "frames", len(persistedMeta), "segments", len(segmentNames))

	// The ring is in-memory only and never serialized, so a fresh one
	// starts empty on every open: there are no pending records to replay
	// across a process restart, only the committed segments and metadata
	// already loaded above. The ingest path is synchronous with no
	// suspension point between a WAL append and its index update, so an
	// uncommitted working set cannot survive into a new process.
	ring := wal.NewRing(defaultRingCapacity, logger, reg)

	lifecycle := store.NewLifecycleStore()
	lifecycle.Restore(persistedMeta, payloads)

	lexicalIndex := lexical.NewEngine()
	memories := make([]string, 0, len(payloads))
	for _, m := range persistedMeta {
		if m.Status != store.StatusActive {
			continue
		}
		payload, ok := payloads[m.ID]
		if !ok {
			continue
		}
		text := string(payload)
		memories = append(memories, text)
		if config.EnableTextSearch {
			lexicalIndex.Ingest(strconv.FormatUint(m.ID, 10), text, nil)
		}
	}

	s := &Session{
		mode:           mode,
		config:         config,
		logger:         logger,
		metrics:        newMetrics(reg),
		storeRoot:      storeRoot,
		segmentsDir:    segmentsDir,
		ring:           ring,
		lifecycle:      lifecycle,
		durable:        durable,
		vector:         vector,
		vectorDim:      config.VectorDimensions,
		vectorMemories: make(map[uint64]string),
		memories:       memories,
		lexicalIndex:   lexicalIndex,
		structured:     NewStructuredMemory(),
		surrogates:     newSurrogateMaintenance(),
		nextTimestamp:  uint64(time.Now().UnixMilli()),
		segmentSeq:     uint64(len(segmentNames)),
		segments:       segmentNames,
	}
	return s, nil
}

// recoverSegments replays every sealed segment file in dir, in ascending
// name (and therefore sequence) order, into a single frame_id -> payload
// map. Later segments overwrite earlier ones for the same id, matching
// "last write wins" across the WAL-backed commit history each segment
// represents.
func recoverSegments(dir string) ([]string, map[uint64][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	payloads := make(map[uint64][]byte)
	for _, name := range names {
		body, _, err := store.ReadContainer(filepath.Join(dir, name))
		if err != nil {
			return nil, nil, fmt.Errorf("recover segment %s: %w", name, err)
		}
		reader, err := segment.OpenReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("recover segment %s: %w", name, err)
		}
		for _, id := range reader.FrameIDs() {
			payload, err := reader.Frame(id)
			if err != nil {
				return nil, nil, fmt.Errorf("recover segment %s: %w", name, err)
			}
			payloads[id] = payload
		}
	}
	return names, payloads, nil
}

// Close releases the durable store's file handle.
func (s *Session) Close() error {
	return s.durable.Close()
}

// Mode reports whether the session accepts mutating calls.
func (s *Session) Mode() Mode { return s.mode }

// Config returns the session's enabled-lane configuration.
func (s *Session) Config() Config { return s.config }

// StoreRoot returns the durable store root path this session was opened
// against.
func (s *Session) StoreRoot() string { return s.storeRoot }

// SegmentNames returns the names (not full paths) of every sealed segment
// container written so far, ascending, for a backup driver to name in a
// manifest's changed_segments.
func (s *Session) SegmentNames() []string {
	s.leaseMu.RLock()
	defer s.leaseMu.RUnlock()
	out := make([]string, len(s.segments))
	copy(out, s.segments)
	return out
}

func (s *Session) ensureWritable() error {
	if s.mode == ReadOnly {
		return errReadOnly()
	}
	return nil
}

func (s *Session) nextSessionTimestamp() uint64 {
	ts := s.nextTimestamp
	s.nextTimestamp++
	return ts
}

// putFrameInternal appends the WAL record and the lifecycle-store mutation
// for a new frame under the writer lease. Both happen together: there is
// no observable state between "WAL record appended" and "lifecycle store
// updated" from any caller's perspective, since both happen while leaseMu
// is held for write.
func (s *Session) putFrameInternal(payload []byte, timestamp uint64) uint64 {
	id := s.lifecycle.Put(payload, timestamp)
	s.ring.Append(wal.PutFrame(id, payload))
	return id
}

// Remember ingests text as a new frame. Requires ReadWrite mode and
// EnableTextSearch.
func (s *Session) Remember(text string) (uint64, error) {
	s.leaseMu.Lock()
	defer s.leaseMu.Unlock()

	if err := s.ensureWritable(); err != nil {
		return 0, err
	}
	if !s.config.EnableTextSearch {
		return 0, errTextSearchDisabled()
	}

	timestamp := s.nextSessionTimestamp()
	id := s.putFrameInternal([]byte(text), timestamp)
	s.memories = append(s.memories, text)
	s.lexicalIndex.Ingest(strconv.FormatUint(id, 10), text, nil)
	s.pending++
	s.metrics.remembers.Inc()
	return id, nil
}

// checkOrInitDimension validates got against the session's declared vector
// dimension, fixing it on the first call if none was declared.
func (s *Session) checkOrInitDimension(got int) error {
	if s.vectorDim != nil {
		if *s.vectorDim != got {
			return errVectorDimensionMismatch(*s.vectorDim, got)
		}
		return nil
	}
	s.vectorDim = &got
	return nil
}

// RememberWithEmbedding ingests text plus its pre-computed embedding.
// Requires ReadWrite mode and EnableVectorSearch; the text lane is not
// required, so a vector-only session can still ingest embeddings (the
// raw text is retained for RecallSemantic either way).
func (s *Session) RememberWithEmbedding(text string, embedding []float32) (uint64, error) {
	s.leaseMu.Lock()
	defer s.leaseMu.Unlock()

	if err := s.ensureWritable(); err != nil {
		return 0, err
	}
	if !s.config.EnableVectorSearch {
		return 0, errVectorSearchDisabled()
	}
	if len(embedding) == 0 {
		return 0, errEmptyEmbedding()
	}
	if err := s.checkOrInitDimension(len(embedding)); err != nil {
		return 0, err
	}

	timestamp := s.nextSessionTimestamp()
	id := s.putFrameInternal([]byte(text), timestamp)
	s.memories = append(s.memories, text)
	s.vectorMemories[id] = text
	if s.config.EnableTextSearch {
		s.lexicalIndex.Ingest(strconv.FormatUint(id, 10), text, nil)
	}
	if s.vector != nil {
		s.vector.Upsert(id, embedding)
	}
	s.pending++
	s.metrics.remembers.Inc()
	return id, nil
}

// RememberWithEmbedder ingests text using embed to compute its vector
// embedding. embed runs first, and any failure is wrapped as
// EmbeddingProvider without recording a frame. On success the computed
// embedding is passed to RememberWithEmbedding, which applies its own
// mode/config/dimension checks.
func (s *Session) RememberWithEmbedder(text string, embed func(string) ([]float32, error)) (uint64, error) {
	embedding, err := embed(text)
	if err != nil {
		return 0, errEmbeddingProvider(err.Error())
	}
	return s.RememberWithEmbedding(text, embedding)
}

// Forget marks a frame Deleted, evicting its payload from the lifecycle
// store. Requires ReadWrite mode.
func (s *Session) Forget(id uint64) error {
	s.leaseMu.Lock()
	defer s.leaseMu.Unlock()

	if err := s.ensureWritable(); err != nil {
		return err
	}
	s.lifecycle.Delete(id)
	s.ring.Append(wal.DeleteFrame(id))
	if s.vector != nil {
		s.vector.Remove(id)
	}
	delete(s.vectorMemories, id)
	s.surrogates.markStale(id)
	return nil
}

// Supersede links old -> new in the lifecycle store, hiding old from
// default visibility while retaining it for timeline reconstruction. The
// new frame's surrogate (e.g. a cached RAG tier classification) is marked
// stale since it summarizes content that just changed underneath it.
// Requires ReadWrite mode.
func (s *Session) Supersede(oldID, newID uint64) error {
	s.leaseMu.Lock()
	defer s.leaseMu.Unlock()

	if err := s.ensureWritable(); err != nil {
		return err
	}
	s.lifecycle.Supersede(oldID, newID)
	s.surrogates.markStale(newID)
	return nil
}

// RewriteLiveSet filters supersededIDs out of logicalIDs and returns the
// sorted remainder plus a before/after count report, without re-deriving
// the live set from the lifecycle store. Callers typically pass the ids
// from a prior Timeline(true) call split into live/superseded sets.
func (s *Session) RewriteLiveSet(logicalIDs, supersededIDs []uint64) ([]uint64, LiveSetRewriteReport) {
	return rewriteLiveSet(logicalIDs, supersededIDs)
}

// RebuildSurrogates clears the set of frame ids whose cached surrogate was
// marked stale (by Forget or Supersede) and reports how many were pending.
func (s *Session) RebuildSurrogates() int {
	s.leaseMu.Lock()
	defer s.leaseMu.Unlock()
	return s.surrogates.rebuild()
}

// Timeline projects the lifecycle store's active frames ordered by
// timestamp, optionally including superseded ones.
func (s *Session) Timeline(includeSuperseded bool) []store.Metadata {
	s.leaseMu.RLock()
	defer s.leaseMu.RUnlock()
	return s.lifecycle.Timeline(includeSuperseded)
}

// Recall returns every remembered text containing q as a substring.
// RecallLexical is the indexed alternative; this raw scan is kept as the
// cheap default until recall switches over.
func (s *Session) Recall(q string) ([]string, error) {
	s.leaseMu.RLock()
	defer s.leaseMu.RUnlock()

	if !s.config.EnableTextSearch {
		return nil, errTextSearchDisabled()
	}
	var out []string
	for _, m := range s.memories {
		if strings.Contains(m, q) {
			out = append(out, m)
		}
	}
	return out, nil
}

// RecallLexical queries the term-scoring lexical index directly, as
// opposed to Recall's raw substring scan.
func (s *Session) RecallLexical(query string, filter *lexical.MetadataFilter, limit int) ([]lexical.Hit, error) {
	s.leaseMu.RLock()
	defer s.leaseMu.RUnlock()

	if !s.config.EnableTextSearch {
		return nil, errTextSearchDisabled()
	}
	return s.lexicalIndex.Query(query, filter, limit), nil
}

// RecallSemantic searches the vector backend and maps hits back to the
// remembered text for each id.
func (s *Session) RecallSemantic(query []float32, k int) ([]string, error) {
	s.leaseMu.RLock()
	defer s.leaseMu.RUnlock()

	if !s.config.EnableVectorSearch {
		return nil, errVectorSearchDisabled()
	}
	if k == 0 || len(query) == 0 {
		return nil, nil
	}
	expected := len(query)
	if s.vectorDim != nil {
		expected = *s.vectorDim
	}
	if expected != len(query) {
		return nil, errVectorDimensionMismatch(expected, len(query))
	}
	if s.vector == nil {
		return nil, nil
	}

	hits := s.vector.Search(query, k)
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if text, ok := s.vectorMemories[h.ID]; ok {
			out = append(out, text)
		}
	}
	return out, nil
}

// Search fuses lexical, semantic, and temporal signals for query: the
// query is classified Constraint/Semantic, each lane
// contributes whatever score it can compute for the union of candidate
// ids it and the other lanes surfaced, and the result is fused and
// ranked by fusion.FuseResults. queryVector may be nil to skip the
// semantic lane.
func (s *Session) Search(req fusion.SearchRequest, queryVector []float32, k int) []fusion.UnifiedHit {
	s.leaseMu.RLock()
	defer s.leaseMu.RUnlock()

	mode := fusion.ClassifyQuery(req.Query)

	candidates := make(map[uint64]*fusion.UnifiedCandidate)
	ensure := func(id uint64) *fusion.UnifiedCandidate {
		c, ok := candidates[id]
		if !ok {
			c = &fusion.UnifiedCandidate{ID: id}
			candidates[id] = c
		}
		return c
	}

	if s.config.EnableTextSearch && req.Query != "" {
		for _, hit := range s.lexicalIndex.Query(req.Query, nil, k*4+8) {
			id, err := strconv.ParseUint(hit.ID, 10, 64)
			if err != nil {
				continue
			}
			ensure(id).StructuredScore = hit.Score
		}
	}

	if s.config.EnableVectorSearch && s.vector != nil && len(queryVector) > 0 {
		for _, hit := range s.vector.Search(queryVector, k*4+8) {
			ensure(hit.ID).SemanticScore = hit.Score
		}
	}

	timeline := s.lifecycle.Timeline(true)
	if len(timeline) > 0 {
		minTS, maxTS := timeline[0].Timestamp, timeline[0].Timestamp
		for _, m := range timeline {
			if m.Timestamp < minTS {
				minTS = m.Timestamp
			}
			if m.Timestamp > maxTS {
				maxTS = m.Timestamp
			}
		}
		span := maxTS - minTS
		for _, m := range timeline {
			if _, ok := candidates[m.ID]; !ok {
				continue
			}
			var recency float32
			if span > 0 {
				recency = float32(m.Timestamp-minTS) / float32(span)
			}
			ensure(m.ID).TemporalScore = recency
		}
	}

	flat := make([]fusion.UnifiedCandidate, 0, len(candidates))
	for _, c := range candidates {
		flat = append(flat, *c)
	}

	hits := fusion.FuseResults(req, mode, flat)
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Stage snapshots the pending text-entry count into a StageReport and
// zeroes the counter. compact additionally compacts the WAL ring up to
// its current tip.
func (s *Session) Stage(compact bool) (StageReport, error) {
	s.leaseMu.Lock()
	defer s.leaseMu.Unlock()
	return s.stageLocked(compact)
}

func (s *Session) stageLocked(compact bool) (StageReport, error) {
	if err := s.ensureWritable(); err != nil {
		return StageReport{}, err
	}
	report := StageReport{PendingTextEntries: s.pending}
	if compact {
		report.Compacted = s.ring.Compact(s.ring.Tip())
	}
	s.pending = 0
	return report, nil
}

// Commit stages, then flushes the lifecycle store's metadata and a new
// sealed segment container of current payloads to durable storage. On
// flush failure, the pending counter is restored so the caller can retry,
// and a DurableStoreIo error is returned.
func (s *Session) Commit(compact bool) (StageReport, error) {
	s.leaseMu.Lock()
	defer s.leaseMu.Unlock()

	report, err := s.stageLocked(compact)
	if err != nil {
		return StageReport{}, err
	}

	committedSeq := s.ring.Tip()
	metas := s.lifecycle.AllMetadata()
	if err := s.durable.Flush(metas, committedSeq); err != nil {
		s.pending += report.PendingTextEntries
		s.metrics.commitFailures.Inc()
		level.Error(s.logger).Log("msg", "commit failed, pending count restored", "err", err)
		return StageReport{}, errDurableStoreIo(err.Error())
	}

	if err := s.writeSegment(); err != nil {
		s.pending += report.PendingTextEntries
		s.metrics.commitFailures.Inc()
		level.Error(s.logger).Log("msg", "commit segment write failed, pending count restored", "err", err)
		return StageReport{}, errDurableStoreIo(err.Error())
	}

	s.metrics.commits.Inc()
	return report, nil
}

// writeSegment seals a fresh segment from the current payload set and
// persists it as a full MV2S container file under segmentsDir.
func (s *Session) writeSegment() error {
	payloads := s.lifecycle.AllPayloads()

	w := segment.NewWriter()
	ids := make([]uint64, 0, len(payloads))
	for id := range payloads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		w.Append(id, payloads[id])
	}
	body := w.Seal()

	s.segmentSeq++
	name := fmt.Sprintf("segment-%06d.mv2s", s.segmentSeq)
	path := filepath.Join(s.segmentsDir, name)
	if err := store.WriteContainer(path, s.segmentSeq, body, uint64(w.FrameCount())); err != nil {
		s.segmentSeq--
		return err
	}
	s.segments = append(s.segments, name)
	return nil
}

// UpsertEntity writes a structured entity. Requires ReadWrite mode and
// EnableStructuredMemory.
func (s *Session) UpsertEntity(id string, attrs map[string]string) error {
	s.leaseMu.Lock()
	defer s.leaseMu.Unlock()

	if err := s.ensureWritable(); err != nil {
		return err
	}
	if !s.config.EnableStructuredMemory {
		return errStructuredMemoryDisabled()
	}
	s.structured.Upsert(id, attrs)
	return nil
}

// GetEntity reads a structured entity by its canonicalized id. Requires
// EnableStructuredMemory.
func (s *Session) GetEntity(id string) (StructuredEntity, bool, error) {
	s.leaseMu.RLock()
	defer s.leaseMu.RUnlock()

	if !s.config.EnableStructuredMemory {
		return StructuredEntity{}, false, errStructuredMemoryDisabled()
	}
	e, ok := s.structured.Get(id)
	return e, ok, nil
}

// DeleteEntity removes a structured entity by its canonicalized id.
// Requires ReadWrite mode and EnableStructuredMemory.
func (s *Session) DeleteEntity(id string) error {
	s.leaseMu.Lock()
	defer s.leaseMu.Unlock()

	if err := s.ensureWritable(); err != nil {
		return err
	}
	if !s.config.EnableStructuredMemory {
		return errStructuredMemoryDisabled()
	}
	s.structured.Delete(id)
	return nil
}
