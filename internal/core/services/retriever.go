package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
	"github.com/custodia-labs/lorekeep/internal/logger"
	"github.com/custodia-labs/lorekeep/internal/metrics"
)

// DefaultLimit is used when a search is given a non-positive limit.
const DefaultLimit = 10

// Hybrid fusion weights.
const (
	KeywordWeight = 0.6
	VectorWeight  = 0.4
)

// Ensure Retriever implements the interface.
var _ driving.Retriever = (*Retriever)(nil)

// Retriever ranks visible chunks. The metadata index decides visibility
// and hydrates records; the secondary indices only score ids.
type Retriever struct {
	meta     driven.MetadataIndex
	objects  driven.ObjectStore
	lexical  driven.LexicalIndex
	semantic driven.SemanticIndex
	metrics  *metrics.Metrics
}

// NewRetriever creates a retriever. metrics may be nil.
func NewRetriever(
	meta driven.MetadataIndex,
	objects driven.ObjectStore,
	lexical driven.LexicalIndex,
	semantic driven.SemanticIndex,
	m *metrics.Metrics,
) *Retriever {
	return &Retriever{
		meta:     meta,
		objects:  objects,
		lexical:  lexical,
		semantic: semantic,
		metrics:  m,
	}
}

// SearchKeyword scores every visible chunk of every visible document by the
// summed occurrence counts of the query's whitespace-separated terms.
// Matching is case-insensitive substring counting.
func (r *Retriever) SearchKeyword(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	start := time.Now()
	limit = normalizeLimit(limit)

	results, err := r.keyword(ctx, query)
	if err != nil {
		return nil, err
	}
	results = truncate(results, limit)

	r.metrics.ObserveSearch("keyword", len(results), time.Since(start))
	logger.Debug("keyword search %q: %d results", query, len(results))
	return results, nil
}

func (r *Retriever) keyword(ctx context.Context, query string) ([]domain.SearchResult, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return []domain.SearchResult{}, nil
	}

	docs, err := r.meta.ListDocs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	seen := make(map[string]struct{})
	results := []domain.SearchResult{}
	for _, doc := range docs {
		chunks, err := r.meta.GetChunksForDoc(ctx, doc.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading chunks for %s: %w", doc.ID, err)
		}
		for _, c := range chunks {
			// A chunk shared by several documents is scored once.
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}

			text := strings.ToLower(c.Text)
			score := 0
			for _, term := range terms {
				score += strings.Count(text, term)
			}
			if score > 0 {
				results = append(results, domain.SearchResult{
					ChunkID:  c.ID,
					DocID:    c.DocID,
					Sequence: c.Sequence,
					Text:     c.Text,
					Score:    float64(score),
				})
			}
		}
	}

	sortResults(results)
	return results, nil
}

// SearchLexical ranks visible chunks by TF-IDF cosine similarity.
func (r *Retriever) SearchLexical(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	start := time.Now()
	limit = normalizeLimit(limit)

	// Ask for every positive hit: tombstoned ids are filtered after scoring.
	hits, err := r.lexical.Search(ctx, query, max(limit, r.lexical.Len()))
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		chunk, ok := r.visibleChunk(ctx, h.ChunkID)
		if !ok {
			continue
		}
		results = append(results, domain.SearchResult{
			ChunkID:  chunk.ID,
			DocID:    chunk.DocID,
			Sequence: chunk.Sequence,
			Text:     chunk.Text,
			Score:    h.Score,
		})
	}
	sortResults(results)
	results = truncate(results, limit)

	r.metrics.ObserveSearch("lexical", len(results), time.Since(start))
	return results, nil
}

// SearchHybrid fuses normalised keyword scores with vector similarity.
// Vector candidates come from the semantic index when it is ready and from
// the lexical index otherwise. Both sides fetch twice the limit.
func (r *Retriever) SearchHybrid(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	start := time.Now()
	limit = normalizeLimit(limit)
	fetch := 2 * limit

	var (
		kw  []domain.SearchResult
		vec []driven.SearchHit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.keyword(gctx, query)
		if err != nil {
			return err
		}
		kw = truncate(res, fetch)
		return nil
	})
	g.Go(func() error {
		vec = r.vectorCandidates(gctx, query, fetch)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}

	results := r.fuse(ctx, kw, vec, limit)
	r.metrics.ObserveSearch("hybrid", len(results), time.Since(start))
	return results, nil
}

// vectorCandidates never fails: a broken vector side yields no candidates
// and the hybrid ranking degrades to keyword scores alone.
func (r *Retriever) vectorCandidates(ctx context.Context, query string, n int) []driven.SearchHit {
	if r.semantic != nil && r.semantic.IsReady() {
		hits, err := r.semantic.Search(ctx, query, n)
		if err != nil {
			logger.Warn("semantic search failed, using keyword scores only: %v", err)
			r.metrics.IncIndexError("semantic")
			return nil
		}
		return hits
	}

	r.metrics.IncSemanticFallback()
	hits, err := r.lexical.Search(ctx, query, n)
	if err != nil {
		logger.Warn("lexical search failed, using keyword scores only: %v", err)
		r.metrics.IncIndexError("lexical")
		return nil
	}
	return hits
}

// fuse combines keyword results and vector hits into hybrid scores.
// Keyword scores are divided by the best keyword score; a candidate missing
// from one side scores 0 there.
func (r *Retriever) fuse(ctx context.Context, kw []domain.SearchResult, vec []driven.SearchHit, limit int) []domain.SearchResult {
	maxKw := 0.0
	for _, res := range kw {
		maxKw = max(maxKw, res.Score)
	}

	byID := make(map[string]*domain.SearchResult, len(kw)+len(vec))
	for _, res := range kw {
		c := res
		if maxKw > 0 {
			c.KeywordScore = res.Score / maxKw
		}
		byID[c.ChunkID] = &c
	}
	for _, h := range vec {
		if c, ok := byID[h.ChunkID]; ok {
			c.VectorScore = h.Score
			continue
		}
		chunk, ok := r.visibleChunk(ctx, h.ChunkID)
		if !ok {
			continue
		}
		byID[h.ChunkID] = &domain.SearchResult{
			ChunkID:     chunk.ID,
			DocID:       chunk.DocID,
			Sequence:    chunk.Sequence,
			Text:        chunk.Text,
			VectorScore: h.Score,
		}
	}

	results := make([]domain.SearchResult, 0, len(byID))
	for _, c := range byID {
		c.Score = KeywordWeight*c.KeywordScore + VectorWeight*c.VectorScore
		results = append(results, *c)
	}
	sortResults(results)
	return truncate(results, limit)
}

// GetEvidencePack runs a keyword search and attaches a citation to every
// hit. Verified is recomputed from the object store on each call.
func (r *Retriever) GetEvidencePack(ctx context.Context, query string, limit int) (*domain.EvidencePack, error) {
	hits, err := r.SearchKeyword(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	pack := &domain.EvidencePack{
		Query:     query,
		Chunks:    make([]domain.EvidenceChunk, 0, len(hits)),
		Citations: make([]domain.Citation, 0, len(hits)),
	}
	for _, h := range hits {
		chunk, err := r.meta.GetChunk(ctx, h.ChunkID)
		if err != nil {
			continue
		}
		doc, err := r.meta.GetDoc(ctx, chunk.DocID)
		if err != nil {
			continue
		}

		verified := r.objects.VerifyIntegrity(ctx, chunk.ObjectHash)
		if !verified {
			logger.Warn("evidence: object %s for chunk %s failed verification", chunk.ObjectHash, chunk.ID)
			r.metrics.AddIntegrityFailures(1)
		}

		pack.Chunks = append(pack.Chunks, domain.EvidenceChunk{
			ChunkID:  chunk.ID,
			DocID:    chunk.DocID,
			Sequence: chunk.Sequence,
			Text:     chunk.Text,
			Score:    h.Score,
		})
		pack.Citations = append(pack.Citations, domain.Citation{
			DocID:       doc.ID,
			DocTitle:    doc.Title,
			DocSource:   doc.Source,
			ChunkID:     chunk.ID,
			ByteOffset:  chunk.ByteOffset,
			ByteLength:  chunk.ByteLength,
			ContentHash: chunk.ContentHash,
			ObjectHash:  chunk.ObjectHash,
			Verified:    verified,
			Score:       h.Score,
		})
	}
	return pack, nil
}

// visibleChunk hydrates a secondary-index hit. The chunk must be visible,
// its document must be visible, and the document must still list it: a
// re-ingest replaces the list and leaves the old ids in the indices.
func (r *Retriever) visibleChunk(ctx context.Context, id string) (*domain.Chunk, bool) {
	chunk, err := r.meta.GetChunk(ctx, id)
	if err != nil {
		return nil, false
	}
	if r.meta.IsDeleted(chunk.DocID) {
		return nil, false
	}
	ids, err := r.meta.ChunkIDsForDoc(ctx, chunk.DocID)
	if err != nil || !slices.Contains(ids, id) {
		return nil, false
	}
	return chunk, true
}

// queryTerms lower-cases and de-duplicates whitespace-separated terms.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]struct{}, len(fields))
	terms := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// sortResults orders by score desc, doc id asc, sequence asc, chunk id asc.
func sortResults(results []domain.SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DocID != b.DocID {
			return a.DocID < b.DocID
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ChunkID < b.ChunkID
	})
}

func truncate(results []domain.SearchResult, limit int) []domain.SearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
