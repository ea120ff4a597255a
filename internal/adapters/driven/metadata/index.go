// Package metadata implements the primary tables of the knowledge store.
//
// Six tables are held in memory and written through to a driven.TableStore
// on every mutation: docs, chunks, doc_chunks, facts, summaries and
// tombstones. Visibility is decided by the deleted-id set, which is rebuilt
// from the tombstones table at open and extended by every PutTombstone.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/snapshot"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/logger"
)

// Table names, one persisted snapshot each.
const (
	TableDocs       = "docs"
	TableChunks     = "chunks"
	TableDocChunks  = "doc_chunks"
	TableFacts      = "facts"
	TableSummaries  = "summaries"
	TableTombstones = "tombstones"
)

// Tables lists every table the index persists, in load order.
var Tables = []string{TableDocs, TableChunks, TableDocChunks, TableFacts, TableSummaries, TableTombstones}

// Verify interface compliance.
var _ driven.MetadataIndex = (*Index)(nil)

// Index is the metadata index. Writers are serialised; readers run concurrently.
type Index struct {
	mu     sync.RWMutex
	tables driven.TableStore

	docs       *ordered[domain.Document]
	chunks     *ordered[domain.Chunk]
	docChunks  *ordered[[]string]
	facts      *ordered[domain.Fact]
	summaries  *ordered[domain.Summary]
	tombstones *ordered[domain.Tombstone]

	deleted map[string]struct{}
	report  domain.LoadReport
}

// Open restores the index from tables. A table that has never been saved
// loads as empty. A table that cannot be read or decoded also loads as
// empty and is recorded in the LoadReport; Open itself does not fail on it.
func Open(ctx context.Context, tables driven.TableStore) (*Index, error) {
	if tables == nil {
		return nil, fmt.Errorf("%w: table store is nil", domain.ErrInvalidInput)
	}

	idx := &Index{
		tables:     tables,
		docs:       newOrdered[domain.Document](),
		chunks:     newOrdered[domain.Chunk](),
		docChunks:  newOrdered[[]string](),
		facts:      newOrdered[domain.Fact](),
		summaries:  newOrdered[domain.Summary](),
		tombstones: newOrdered[domain.Tombstone](),
		deleted:    make(map[string]struct{}),
		report:     domain.LoadReport{Component: "metadata index", Tables: len(Tables)},
	}

	targets := map[string]json.Unmarshaler{
		TableDocs:       idx.docs,
		TableChunks:     idx.chunks,
		TableDocChunks:  idx.docChunks,
		TableFacts:      idx.facts,
		TableSummaries:  idx.summaries,
		TableTombstones: idx.tombstones,
	}
	for _, name := range Tables {
		if err := idx.load(ctx, name, targets[name]); err != nil {
			logger.Warn("metadata: table %s not loaded: %v", name, err)
			idx.report.Add(name, err)
		}
	}

	idx.tombstones.each(func(_ string, t domain.Tombstone) {
		idx.deleted[t.TargetID] = struct{}{}
	})

	logger.Debug("metadata: loaded %d docs, %d chunks, %d tombstones (%s)",
		idx.docs.len(), idx.chunks.len(), idx.tombstones.len(), idx.report.Status())

	return idx, nil
}

func (idx *Index) load(ctx context.Context, name string, into json.Unmarshaler) error {
	if _, err := snapshot.Load(ctx, idx.tables, name, into); err != nil {
		// Drop whatever was decoded before the error.
		_ = into.UnmarshalJSON([]byte("null"))
		return err
	}
	return nil
}

// save writes one table. Callers hold the write lock.
func (idx *Index) save(ctx context.Context, name string, table json.Marshaler) error {
	return snapshot.Save(ctx, idx.tables, name, table)
}

// LoadReport describes how the index was restored at open.
func (idx *Index) LoadReport() domain.LoadReport {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.report
}

// IsDeleted reports whether id has a tombstone.
func (idx *Index) IsDeleted(id string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.isDeleted(id)
}

func (idx *Index) isDeleted(id string) bool {
	_, ok := idx.deleted[id]
	return ok
}

// ==================== Documents ====================

// PutDoc stores a document and resets its chunk-id list. Re-putting an
// existing document detaches the chunks recorded for it so far.
func (idx *Index) PutDoc(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.docs.set(doc.ID, *doc)
	idx.docChunks.set(doc.ID, []string{})

	if err := idx.save(ctx, TableDocs, idx.docs); err != nil {
		return err
	}
	return idx.save(ctx, TableDocChunks, idx.docChunks)
}

// GetDoc retrieves a visible document.
func (idx *Index) GetDoc(_ context.Context, id string) (*domain.Document, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.isDeleted(id) {
		return nil, domain.ErrNotFound
	}
	doc, ok := idx.docs.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocs returns visible documents in insertion order.
func (idx *Index) ListDocs(_ context.Context) ([]domain.Document, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return visible(idx, idx.docs), nil
}

// ==================== Chunks ====================

// PutChunk stores a chunk and appends its id to the parent document's list.
func (idx *Index) PutChunk(ctx context.Context, chunk *domain.Chunk) error {
	if chunk == nil || chunk.ID == "" || chunk.DocID == "" {
		return fmt.Errorf("%w: chunk id and doc id are required", domain.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	// A chunk id appears once per document. Repeated text keeps one row,
	// holding the sequence and offset of its last occurrence.
	idx.chunks.set(chunk.ID, *chunk)
	ids, _ := idx.docChunks.get(chunk.DocID)
	if !slices.Contains(ids, chunk.ID) {
		idx.docChunks.set(chunk.DocID, append(slices.Clone(ids), chunk.ID))
	}

	if err := idx.save(ctx, TableChunks, idx.chunks); err != nil {
		return err
	}
	return idx.save(ctx, TableDocChunks, idx.docChunks)
}

// GetChunk retrieves a visible chunk.
func (idx *Index) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.isDeleted(id) {
		return nil, domain.ErrNotFound
	}
	chunk, ok := idx.chunks.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// ChunkIDsForDoc returns the raw chunk-id list of a document, tombstoned
// ids included. An unknown document yields an empty list.
func (idx *Index) ChunkIDsForDoc(_ context.Context, docID string) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids, _ := idx.docChunks.get(docID)
	return slices.Clone(ids), nil
}

// GetChunksForDoc returns the document's visible chunks in list order.
func (idx *Index) GetChunksForDoc(_ context.Context, docID string) ([]domain.Chunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.isDeleted(docID) {
		return nil, domain.ErrNotFound
	}
	ids, _ := idx.docChunks.get(docID)
	out := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if idx.isDeleted(id) {
			continue
		}
		if chunk, ok := idx.chunks.get(id); ok {
			out = append(out, chunk)
		}
	}
	return out, nil
}

// ==================== Facts ====================

// PutFact stores a fact.
func (idx *Index) PutFact(ctx context.Context, fact *domain.Fact) error {
	if fact == nil || fact.ID == "" {
		return fmt.Errorf("%w: fact id is required", domain.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.facts.set(fact.ID, *fact)
	return idx.save(ctx, TableFacts, idx.facts)
}

// GetFact retrieves a visible fact.
func (idx *Index) GetFact(_ context.Context, id string) (*domain.Fact, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.isDeleted(id) {
		return nil, domain.ErrNotFound
	}
	fact, ok := idx.facts.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &fact, nil
}

// ListFacts returns visible facts in insertion order.
func (idx *Index) ListFacts(_ context.Context) ([]domain.Fact, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return visible(idx, idx.facts), nil
}

// ==================== Summaries ====================

// PutSummary stores a summary.
func (idx *Index) PutSummary(ctx context.Context, summary *domain.Summary) error {
	if summary == nil || summary.ID == "" {
		return fmt.Errorf("%w: summary id is required", domain.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.summaries.set(summary.ID, *summary)
	return idx.save(ctx, TableSummaries, idx.summaries)
}

// GetSummary retrieves a visible summary.
func (idx *Index) GetSummary(_ context.Context, id string) (*domain.Summary, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.isDeleted(id) {
		return nil, domain.ErrNotFound
	}
	summary, ok := idx.summaries.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &summary, nil
}

// ListSummaries returns visible summaries in insertion order.
func (idx *Index) ListSummaries(_ context.Context) ([]domain.Summary, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return visible(idx, idx.summaries), nil
}

// ==================== Tombstones ====================

// PutTombstone appends a tombstone and hides its target.
func (idx *Index) PutTombstone(ctx context.Context, tombstone *domain.Tombstone) error {
	if tombstone == nil || tombstone.ID == "" || tombstone.TargetID == "" {
		return fmt.Errorf("%w: tombstone id and target id are required", domain.ErrInvalidInput)
	}
	if !tombstone.TargetKind.IsValid() {
		return fmt.Errorf("%w: target kind %q", domain.ErrInvalidInput, tombstone.TargetKind)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tombstones.set(tombstone.ID, *tombstone)
	idx.deleted[tombstone.TargetID] = struct{}{}
	return idx.save(ctx, TableTombstones, idx.tombstones)
}

// ListTombstones returns every tombstone in insertion order.
func (idx *Index) ListTombstones(_ context.Context) ([]domain.Tombstone, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]domain.Tombstone, 0, idx.tombstones.len())
	idx.tombstones.each(func(_ string, t domain.Tombstone) {
		out = append(out, t)
	})
	return out, nil
}

// Stats counts visible rows and every tombstone.
func (idx *Index) Stats(_ context.Context) (domain.IndexStats, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return domain.IndexStats{
		Documents:  countVisible(idx, idx.docs),
		Chunks:     countVisible(idx, idx.chunks),
		Facts:      countVisible(idx, idx.facts),
		Summaries:  countVisible(idx, idx.summaries),
		Tombstones: idx.tombstones.len(),
	}, nil
}

// visible collects rows whose id is not tombstoned. Callers hold the read lock.
func visible[T any](idx *Index, table *ordered[T]) []T {
	out := make([]T, 0, table.len())
	table.each(func(id string, row T) {
		if !idx.isDeleted(id) {
			out = append(out, row)
		}
	})
	return out
}

func countVisible[T any](idx *Index, table *ordered[T]) int {
	n := 0
	table.each(func(id string, _ T) {
		if !idx.isDeleted(id) {
			n++
		}
	})
	return n
}
