package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
	"github.com/custodia-labs/lorekeep/internal/logger"
	"github.com/custodia-labs/lorekeep/internal/metrics"
)

// Ensure Store implements the interface.
var _ driving.KnowledgeStore = (*Store)(nil)

// DefaultEncoding is recorded on documents ingested without one.
const DefaultEncoding = "utf-8"

// StoreDeps holds the components a Store is built from.
// Semantic, Metrics and Closer are optional.
type StoreDeps struct {
	Meta     driven.MetadataIndex
	Objects  driven.ObjectStore
	Digest   driven.Digester
	Lexical  driven.LexicalIndex
	Semantic driven.SemanticIndex

	// Chunkers maps strategy names to chunkers. DefaultChunker names the
	// one used when an ingest request does not pick a strategy.
	Chunkers       map[string]driven.Chunker
	DefaultChunker string

	Metrics *metrics.Metrics

	// Closer releases the persistence backend on Close.
	Closer io.Closer
}

// Store sequences writes across the object store, the metadata index and
// the secondary indices. All mutations are serialised by a single mutex;
// readers go straight to the components, which guard their own state.
type Store struct {
	*Retriever

	mu       sync.Mutex
	closed   bool
	meta     driven.MetadataIndex
	objects  driven.ObjectStore
	digest   driven.Digester
	lexical  driven.LexicalIndex
	semantic driven.SemanticIndex
	chunkers map[string]driven.Chunker
	chunker  string
	metrics  *metrics.Metrics
	closer   io.Closer

	now func() time.Time
}

// NewStore creates a store over already-opened components.
func NewStore(deps StoreDeps) (*Store, error) {
	if deps.Meta == nil || deps.Objects == nil || deps.Digest == nil || deps.Lexical == nil {
		return nil, fmt.Errorf("%w: metadata index, object store, digest and lexical index are required",
			domain.ErrInvalidInput)
	}
	if _, ok := deps.Chunkers[deps.DefaultChunker]; !ok {
		return nil, fmt.Errorf("%w: default chunker %q", domain.ErrUnsupportedType, deps.DefaultChunker)
	}

	sem := deps.Semantic
	if sem == nil {
		sem = nullSemantic{}
	}

	return &Store{
		Retriever: NewRetriever(deps.Meta, deps.Objects, deps.Lexical, sem, deps.Metrics),
		meta:      deps.Meta,
		objects:   deps.Objects,
		digest:    deps.Digest,
		lexical:   deps.Lexical,
		semantic:  sem,
		chunkers:  deps.Chunkers,
		chunker:   deps.DefaultChunker,
		metrics:   deps.Metrics,
		closer:    deps.Closer,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Ingest chunks the request text and stores the document, every chunk and
// its object. Secondary indexing happens last and never fails the ingest.
func (s *Store) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.Document, error) {
	start := time.Now()

	if !utf8.ValidString(req.Text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrInvalidInput)
	}

	name := req.Strategy
	if name == "" {
		name = s.chunker
	}
	chunker, ok := s.chunkers[name]
	if !ok {
		return nil, fmt.Errorf("%w: chunker %q", domain.ErrUnsupportedType, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}

	logger.Section("Ingest")

	spans := chunker.Split(req.Text)
	if err := checkSpans(spans); err != nil {
		return nil, err
	}

	now := s.now()
	doc := &domain.Document{
		ID:         req.DocID,
		Title:      req.Title,
		Source:     req.Source,
		Kind:       req.Kind,
		CreatedAt:  now,
		UpdatedAt:  now,
		ChunkCount: len(spans),
		TotalBytes: len(req.Text),
		Encoding:   req.Encoding,
		Metadata:   req.Metadata,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	} else if s.meta.IsDeleted(doc.ID) {
		// Tombstones are permanent; a forgotten id can never become visible again.
		return nil, fmt.Errorf("%w: document %s has been forgotten", domain.ErrInvalidInput, doc.ID)
	} else if prev, err := s.meta.GetDoc(ctx, doc.ID); err == nil {
		doc.CreatedAt = prev.CreatedAt
		logger.Debug("doc %s: replacing chunk list of %d", doc.ID, prev.ChunkCount)
	}
	if doc.Encoding == "" {
		doc.Encoding = DefaultEncoding
	}
	if err := validateRecord("document", doc); err != nil {
		return nil, err
	}

	logger.Debug("doc %s: %d bytes, %d %s chunks", doc.ID, doc.TotalBytes, len(spans), chunker.Name())

	if err := s.meta.PutDoc(ctx, doc); err != nil {
		return nil, fmt.Errorf("storing document: %w", err)
	}

	entries := make([]driven.IndexEntry, 0, len(spans))
	for i, span := range spans {
		hash := s.digest.Sum([]byte(span.Text))
		objectHash, err := s.objects.Put(ctx, driven.Record{"kind": "chunk", "text": span.Text})
		if err != nil {
			return nil, fmt.Errorf("storing chunk object %d: %w", i, err)
		}

		chunk := &domain.Chunk{
			ID:          hash,
			DocID:       doc.ID,
			Sequence:    i,
			Text:        span.Text,
			ContentHash: hash,
			ByteOffset:  span.Offset,
			ByteLength:  span.Length,
			CreatedAt:   now,
			ObjectHash:  objectHash,
		}
		if err := s.meta.PutChunk(ctx, chunk); err != nil {
			return nil, fmt.Errorf("storing chunk %d: %w", i, err)
		}
		entries = append(entries, driven.IndexEntry{ChunkID: chunk.ID, Text: chunk.Text})
	}

	s.indexEntries(ctx, entries)

	s.metrics.ObserveIngest(len(spans), time.Since(start))
	return doc, nil
}

// indexEntries updates the secondary indices. They may lag the metadata
// index; a failure is logged and left for Reindex.
func (s *Store) indexEntries(ctx context.Context, entries []driven.IndexEntry) {
	if n, err := s.lexical.EnsureIndex(ctx, entries); err != nil {
		logger.Warn("lexical index update failed: %v", err)
		s.metrics.IncIndexError("lexical")
	} else {
		logger.Debug("lexical index: %d new chunks", n)
	}

	if n, err := s.semantic.EnsureIndex(ctx, entries); err != nil {
		logger.Warn("semantic index update failed: %v", err)
		s.metrics.IncIndexError("semantic")
	} else {
		logger.Debug("semantic index: %d new chunks", n)
	}
}

// checkSpans rejects chunker output whose byte accounting is off.
func checkSpans(spans []domain.Span) error {
	prev := 0
	for i, span := range spans {
		if span.Length != len(span.Text) {
			return fmt.Errorf("%w: span %d has length %d for %d bytes",
				domain.ErrChunkAccounting, i, span.Length, len(span.Text))
		}
		if span.Offset < prev {
			return fmt.Errorf("%w: span %d offset %d precedes %d",
				domain.ErrChunkAccounting, i, span.Offset, prev)
		}
		prev = span.Offset
	}
	return nil
}

// Forget tombstones the entity with the given id. Documents are looked up
// first, then chunks, facts and summaries. Forgetting a document also
// tombstones every chunk recorded for it.
func (s *Store) Forget(ctx context.Context, id, reason string) (domain.ForgetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ForgetResult{}, domain.ErrStoreClosed
	}

	result := domain.ForgetResult{Status: domain.ForgetNotFound, TargetID: id, Tombstones: []domain.Tombstone{}}

	kind, found := s.lookup(ctx, id)
	if !found {
		s.metrics.IncForgetNotFound()
		return result, nil
	}
	result.Kind = kind

	var cascade []string
	if kind == domain.TargetDocument {
		// Capture the chunk ids before the document disappears.
		ids, err := s.meta.ChunkIDsForDoc(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return result, fmt.Errorf("listing chunks for %s: %w", id, err)
		}
		cascade = ids
	}

	ts, err := s.tombstone(ctx, id, kind, reason)
	if err != nil {
		return result, err
	}
	result.Status = domain.ForgetDeleted
	result.Tombstones = append(result.Tombstones, ts)
	s.metrics.AddTombstones(kind.String(), 1)

	for _, chunkID := range cascade {
		if s.meta.IsDeleted(chunkID) {
			continue
		}
		ts, err := s.tombstone(ctx, chunkID, domain.TargetChunk, reason)
		if err != nil {
			return result, err
		}
		result.Tombstones = append(result.Tombstones, ts)
		s.metrics.AddTombstones(domain.TargetChunk.String(), 1)
	}

	logger.Info("forgot %s %s (%d tombstones)", kind, id, len(result.Tombstones))
	return result, nil
}

func (s *Store) lookup(ctx context.Context, id string) (domain.TargetKind, bool) {
	if id == "" {
		return "", false
	}
	if _, err := s.meta.GetDoc(ctx, id); err == nil {
		return domain.TargetDocument, true
	}
	if _, err := s.meta.GetChunk(ctx, id); err == nil {
		return domain.TargetChunk, true
	}
	if _, err := s.meta.GetFact(ctx, id); err == nil {
		return domain.TargetFact, true
	}
	if _, err := s.meta.GetSummary(ctx, id); err == nil {
		return domain.TargetSummary, true
	}
	return "", false
}

func (s *Store) tombstone(ctx context.Context, id string, kind domain.TargetKind, reason string) (domain.Tombstone, error) {
	ts := domain.Tombstone{
		ID:         uuid.NewString(),
		TargetID:   id,
		TargetKind: kind,
		Reason:     reason,
		DeletedAt:  s.now(),
	}
	if err := s.meta.PutTombstone(ctx, &ts); err != nil {
		return ts, fmt.Errorf("tombstoning %s %s: %w", kind, id, err)
	}
	return ts, nil
}

// PutFact stores a fact, assigning an id and creation time when empty.
func (s *Store) PutFact(ctx context.Context, fact domain.Fact) (*domain.Fact, error) {
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = s.now()
	}
	if err := validateRecord("fact", &fact); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	if err := s.meta.PutFact(ctx, &fact); err != nil {
		return nil, fmt.Errorf("storing fact: %w", err)
	}
	return &fact, nil
}

// PutSummary stores a summary, assigning an id and creation time when empty.
func (s *Store) PutSummary(ctx context.Context, summary domain.Summary) (*domain.Summary, error) {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = s.now()
	}
	if summary.KeyDecisions == nil {
		summary.KeyDecisions = []string{}
	}
	if summary.OpenTasks == nil {
		summary.OpenTasks = []string{}
	}
	if summary.Definitions == nil {
		summary.Definitions = map[string]string{}
	}
	if err := validateRecord("summary", &summary); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	if err := s.meta.PutSummary(ctx, &summary); err != nil {
		return nil, fmt.Errorf("storing summary: %w", err)
	}
	return &summary, nil
}

// GetDoc retrieves a visible document.
func (s *Store) GetDoc(ctx context.Context, id string) (*domain.Document, error) {
	return s.meta.GetDoc(ctx, id)
}

// ListDocs returns visible documents in insertion order.
func (s *Store) ListDocs(ctx context.Context) ([]domain.Document, error) {
	return s.meta.ListDocs(ctx)
}

// GetChunk retrieves a visible chunk.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	return s.meta.GetChunk(ctx, id)
}

// GetChunksForDoc returns a visible document's visible chunks.
func (s *Store) GetChunksForDoc(ctx context.Context, docID string) ([]domain.Chunk, error) {
	return s.meta.GetChunksForDoc(ctx, docID)
}

// GetFact retrieves a visible fact.
func (s *Store) GetFact(ctx context.Context, id string) (*domain.Fact, error) {
	return s.meta.GetFact(ctx, id)
}

// ListFacts returns visible facts in insertion order.
func (s *Store) ListFacts(ctx context.Context) ([]domain.Fact, error) {
	return s.meta.ListFacts(ctx)
}

// GetSummary retrieves a visible summary.
func (s *Store) GetSummary(ctx context.Context, id string) (*domain.Summary, error) {
	return s.meta.GetSummary(ctx, id)
}

// ListSummaries returns visible summaries in insertion order.
func (s *Store) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	return s.meta.ListSummaries(ctx)
}

// IsDeleted reports whether id has been tombstoned.
func (s *Store) IsDeleted(id string) bool {
	return s.meta.IsDeleted(id)
}

// Reindex drops both secondary indices and rebuilds them from the visible
// chunks of visible documents. It returns the number of chunks indexed
// lexically.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, domain.ErrStoreClosed
	}

	logger.Section("Reindex")

	entries, err := s.visibleEntries(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.lexical.Reset(ctx); err != nil {
		return 0, fmt.Errorf("resetting lexical index: %w", err)
	}
	n, err := s.lexical.EnsureIndex(ctx, entries)
	if err != nil {
		return n, fmt.Errorf("rebuilding lexical index: %w", err)
	}

	if err := s.semantic.Reset(ctx); err != nil {
		logger.Warn("resetting semantic index: %v", err)
		s.metrics.IncIndexError("semantic")
	} else if m, err := s.semantic.EnsureIndex(ctx, entries); err != nil {
		logger.Warn("rebuilding semantic index: %v", err)
		s.metrics.IncIndexError("semantic")
	} else {
		logger.Debug("semantic index rebuilt: %d chunks", m)
	}

	logger.Info("reindexed %d chunks", n)
	return n, nil
}

func (s *Store) visibleEntries(ctx context.Context) ([]driven.IndexEntry, error) {
	docs, err := s.meta.ListDocs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	seen := make(map[string]struct{})
	var entries []driven.IndexEntry
	for _, doc := range docs {
		chunks, err := s.meta.GetChunksForDoc(ctx, doc.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading chunks for %s: %w", doc.ID, err)
		}
		for _, c := range chunks {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			entries = append(entries, driven.IndexEntry{ChunkID: c.ID, Text: c.Text})
		}
	}
	return entries, nil
}

// VerifyObjects re-hashes every stored object and reports the ones whose
// bytes no longer match their address.
func (s *Store) VerifyObjects(ctx context.Context) ([]domain.IntegrityFailure, error) {
	hashes, err := s.objects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}

	var failures []domain.IntegrityFailure
	for _, hash := range hashes {
		if err := ctx.Err(); err != nil {
			return failures, err
		}
		if !s.objects.VerifyIntegrity(ctx, hash) {
			failures = append(failures, domain.IntegrityFailure{
				Hash:   hash,
				Reason: domain.ErrIntegrity.Error(),
			})
		}
	}

	if len(failures) > 0 {
		logger.Warn("%d of %d objects failed verification", len(failures), len(hashes))
		s.metrics.AddIntegrityFailures(len(failures))
	}
	return failures, nil
}

// Stats aggregates counts from every component.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	idx, err := s.meta.Stats(ctx)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("index stats: %w", err)
	}
	objs, err := s.objects.Stats(ctx)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("object stats: %w", err)
	}
	return domain.StoreStats{
		Index:         idx,
		Objects:       objs,
		LexicalChunks: s.lexical.Len(),
		SemanticReady: s.semantic.IsReady(),
		SemanticCount: s.semantic.Len(),
	}, nil
}

type loadReporter interface {
	LoadReport() domain.LoadReport
}

// LoadReport merges the load reports of every component.
func (s *Store) LoadReport() domain.LoadReport {
	report := s.meta.LoadReport()
	report.Component = "store"
	if r, ok := s.lexical.(loadReporter); ok {
		report.Merge(r.LoadReport())
	}
	if r, ok := s.semantic.(loadReporter); ok {
		report.Merge(r.LoadReport())
	}
	return report
}

// Close releases the persistence backend. Further writes fail with
// ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// nullSemantic stands in when no semantic index was supplied. It mirrors
// semantic.Null, which services cannot import without depending on an adapter.
type nullSemantic struct{}

func (nullSemantic) IndexChunk(context.Context, string, string) error { return nil }
func (nullSemantic) EnsureIndex(context.Context, []driven.IndexEntry) (int, error) {
	return 0, nil
}
func (nullSemantic) Search(context.Context, string, int) ([]driven.SearchHit, error) {
	return nil, nil
}
func (nullSemantic) Len() int                    { return 0 }
func (nullSemantic) IsReady() bool               { return false }
func (nullSemantic) Reset(context.Context) error { return nil }
