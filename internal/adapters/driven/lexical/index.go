// Package lexical implements the TF-IDF chunk index.
//
// Indexing is incremental. Adding a chunk updates the document-frequency
// table and n_docs for future scoring, but vectors stored earlier keep the
// weights they were computed with. Scores therefore drift as the corpus
// grows; Reindex on the store facade is the way to recompute them.
package lexical

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/snapshot"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/logger"
)

// Table names.
const (
	TableVectors = "vectors"
	TableDF      = "df"
	TableMeta    = "vectors_meta"
)

const metaVersion = 1

// Verify interface compliance.
var _ driven.LexicalIndex = (*Index)(nil)

// Vector is a sparse term-weight vector.
type Vector map[string]float64

type meta struct {
	Version int `json:"version"`
	NDocs   int `json:"n_docs"`
}

// Index is a TF-IDF index over chunk text.
type Index struct {
	mu     sync.RWMutex
	tables driven.TableStore

	vectors map[string]Vector
	norms   map[string]float64
	df      map[string]int
	nDocs   int

	report domain.LoadReport
}

// New returns an empty index that persists to tables.
func New(tables driven.TableStore) *Index {
	return &Index{
		tables:  tables,
		vectors: make(map[string]Vector),
		norms:   make(map[string]float64),
		df:      make(map[string]int),
		report:  domain.LoadReport{Component: "lexical index", Tables: 3},
	}
}

// Open restores an index from tables. Missing or unreadable tables leave
// the index empty or partial; problems are recorded in LoadReport.
func Open(ctx context.Context, tables driven.TableStore) (*Index, error) {
	if tables == nil {
		return nil, fmt.Errorf("%w: table store is nil", domain.ErrInvalidInput)
	}
	idx := New(tables)

	var m meta
	if _, err := snapshot.Load(ctx, tables, TableMeta, &m); err != nil {
		idx.fail(TableMeta, err)
	}
	if _, err := snapshot.Load(ctx, tables, TableDF, &idx.df); err != nil || idx.df == nil {
		if err != nil {
			idx.fail(TableDF, err)
		}
		idx.df = make(map[string]int)
	}
	if _, err := snapshot.Load(ctx, tables, TableVectors, &idx.vectors); err != nil || idx.vectors == nil {
		if err != nil {
			idx.fail(TableVectors, err)
		}
		idx.vectors = make(map[string]Vector)
	}

	idx.nDocs = max(m.NDocs, len(idx.vectors))
	for id, vec := range idx.vectors {
		idx.norms[id] = norm(vec)
	}

	logger.Debug("lexical: loaded %d vectors, %d terms, n_docs=%d", len(idx.vectors), len(idx.df), idx.nDocs)
	return idx, nil
}

func (idx *Index) fail(table string, err error) {
	logger.Warn("lexical: table %s not loaded: %v", table, err)
	idx.report.Add(table, err)
}

// LoadReport describes how the index was restored.
func (idx *Index) LoadReport() domain.LoadReport {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.report
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Has reports whether chunkID is indexed.
func (idx *Index) Has(chunkID string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.vectors[chunkID]
	return ok
}

// NDocs returns the largest number of distinct chunks ever indexed.
func (idx *Index) NDocs() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.nDocs
}

// IndexChunk adds or refreshes one chunk and persists the index.
func (idx *Index) IndexChunk(ctx context.Context, chunkID, text string) error {
	if chunkID == "" {
		return fmt.Errorf("%w: chunk id is required", domain.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.add(chunkID, text)
	return idx.persist(ctx)
}

// EnsureIndex indexes entries whose id is not yet present and persists once.
func (idx *Index) EnsureIndex(ctx context.Context, entries []driven.IndexEntry) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	added := 0
	for _, e := range entries {
		if e.ChunkID == "" {
			continue
		}
		if _, ok := idx.vectors[e.ChunkID]; ok {
			continue
		}
		idx.add(e.ChunkID, e.Text)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, idx.persist(ctx)
}

// Reset drops every vector and statistic. The empty state is persisted.
func (idx *Index) Reset(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.vectors = make(map[string]Vector)
	idx.norms = make(map[string]float64)
	idx.df = make(map[string]int)
	idx.nDocs = 0
	return idx.persist(ctx)
}

// add updates df and n_docs for a new id, then stores the chunk's vector
// weighted against the updated statistics. Callers hold the write lock.
func (idx *Index) add(chunkID, text string) {
	counts, maxTF := termCounts(Tokenize(text))

	if _, exists := idx.vectors[chunkID]; !exists {
		for term := range counts {
			idx.df[term]++
		}
		idx.nDocs = max(idx.nDocs, len(idx.vectors)+1)
	}

	vec := idx.weigh(counts, maxTF)
	idx.vectors[chunkID] = vec
	idx.norms[chunkID] = norm(vec)
}

// weigh computes w = (0.5 + 0.5*c/max_tf) * (ln((n_docs+1)/(df+1)) + 1).
func (idx *Index) weigh(counts map[string]int, maxTF int) Vector {
	vec := make(Vector, len(counts))
	if maxTF == 0 {
		return vec
	}
	n := float64(idx.nDocs)
	for term, c := range counts {
		tf := 0.5 + 0.5*float64(c)/float64(maxTF)
		idf := math.Log((n+1)/(float64(idx.df[term])+1)) + 1
		vec[term] = tf * idf
	}
	return vec
}

func (idx *Index) persist(ctx context.Context) error {
	if err := snapshot.Save(ctx, idx.tables, TableVectors, idx.vectors); err != nil {
		return err
	}
	if err := snapshot.Save(ctx, idx.tables, TableDF, idx.df); err != nil {
		return err
	}
	return snapshot.Save(ctx, idx.tables, TableMeta, meta{Version: metaVersion, NDocs: idx.nDocs})
}

// Search ranks indexed chunks by cosine similarity to the query vector.
// Only strictly positive scores are returned, best first, ties broken by
// ascending chunk id.
func (idx *Index) Search(_ context.Context, query string, limit int) ([]driven.SearchHit, error) {
	if limit <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.vectors) == 0 {
		return nil, nil
	}

	counts, maxTF := termCounts(Tokenize(query))
	q := idx.weigh(counts, maxTF)
	qNorm := norm(q)
	if qNorm == 0 {
		return nil, nil
	}

	// Fixed term order keeps float sums reproducible between calls.
	terms := make([]string, 0, len(q))
	for term := range q {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	var hits []driven.SearchHit
	for id, vec := range idx.vectors {
		vNorm := idx.norms[id]
		if vNorm == 0 {
			continue
		}
		dot := 0.0
		for _, term := range terms {
			dot += q[term] * vec[term]
		}
		if score := dot / (qNorm * vNorm); score > 0 {
			hits = append(hits, driven.SearchHit{ChunkID: id, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func norm(vec Vector) float64 {
	sum := 0.0
	for _, w := range vec {
		sum += w * w
	}
	return math.Sqrt(sum)
}
