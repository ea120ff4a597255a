// Package semantic implements the optional embedding index.
//
// Open picks a strategy: a live Index when an embedding backend is
// configured, enabled and reachable, or Null otherwise. Callers never
// branch on availability; Null answers every call with an empty result.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/snapshot"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/logger"
)

// Table names.
const (
	TableEmbeddings = "embeddings"
	TableMeta       = "embeddings_meta"
	TableConfig     = "embeddings_config"
)

// EnvDisable disables the semantic index for the whole process when set
// to a true value.
const EnvDisable = "LOREKEEP_DISABLE_SEMANTIC"

// Defaults.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultBatchSize = 32
)

const metaVersion = 1

var _ driven.SemanticIndex = (*Index)(nil)

// Settings is the persisted index configuration.
type Settings struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model"`
}

// Options configure Open.
type Options struct {
	// Override replaces the persisted settings when non-nil.
	Override *Settings

	// Timeout bounds each backend call (default 30s).
	Timeout time.Duration

	// RateLimit is the sustained backend request rate per second.
	// Zero means unlimited.
	RateLimit float64

	// BatchSize is the number of texts per EmbedBatch call (default 32).
	BatchSize int
}

type meta struct {
	Version    int    `json:"version"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// Index stores one embedding per chunk and ranks by cosine similarity.
type Index struct {
	mu      sync.RWMutex
	tables  driven.TableStore
	backend driven.EmbeddingService
	limiter *rate.Limiter
	timeout time.Duration
	batch   int

	model   string
	dim     int
	vectors map[string][]float32
	report  domain.LoadReport
}

// Disabled reports whether the process-wide override is set.
func Disabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvDisable))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Open resolves the semantic strategy. It never fails because the backend
// is missing or unreachable: those cases return Null. An error is returned
// only for a nil table store.
func Open(ctx context.Context, tables driven.TableStore, backend driven.EmbeddingService, opts Options) (driven.SemanticIndex, error) {
	if tables == nil {
		return nil, fmt.Errorf("%w: table store is nil", domain.ErrInvalidInput)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	report := domain.LoadReport{Component: "semantic index", Tables: 3}

	settings := Settings{Enabled: true}
	stored, err := snapshot.Load(ctx, tables, TableConfig, &settings)
	if err != nil {
		logger.Warn("semantic: table %s not loaded: %v", TableConfig, err)
		report.Add(TableConfig, err)
		settings = Settings{Enabled: true}
	}
	persisted := settings
	if opts.Override != nil {
		settings = *opts.Override
	}

	switch {
	case Disabled():
		return Null{Reason: EnvDisable + " is set"}, nil
	case !settings.Enabled:
		return Null{Reason: "disabled by configuration"}, nil
	case backend == nil:
		return Null{Reason: "no embedding backend configured"}, nil
	}

	if settings.Model == "" {
		settings.Model = backend.ModelName()
	}
	if settings.Model != backend.ModelName() {
		logger.Warn("semantic: configured model %q differs from backend model %q; semantic search disabled",
			settings.Model, backend.ModelName())
		return Null{Reason: "model mismatch"}, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := backend.Ping(pingCtx); err != nil {
		logger.Warn("semantic: embedding backend unavailable: %v", err)
		return Null{Reason: err.Error()}, nil
	}

	idx := &Index{
		tables:  tables,
		backend: backend,
		limiter: newLimiter(opts.RateLimit),
		timeout: opts.Timeout,
		batch:   opts.BatchSize,
		model:   settings.Model,
		vectors: make(map[string][]float32),
		report:  report,
	}

	var m meta
	if _, err := snapshot.Load(ctx, tables, TableMeta, &m); err != nil {
		idx.fail(TableMeta, err)
	}
	if _, err := snapshot.Load(ctx, tables, TableEmbeddings, &idx.vectors); err != nil || idx.vectors == nil {
		if err != nil {
			idx.fail(TableEmbeddings, err)
		}
		idx.vectors = make(map[string][]float32)
	}

	idx.dim = m.Dimensions
	if m.Model != "" && m.Model != idx.model {
		logger.Warn("semantic: dropping %d vectors built with model %q (now %q)", len(idx.vectors), m.Model, idx.model)
		idx.vectors = make(map[string][]float32)
		idx.dim = 0
	}
	if idx.dim == 0 {
		idx.dim = backend.Dimensions()
	}

	if !stored || persisted != settings {
		if err := snapshot.Save(ctx, tables, TableConfig, settings); err != nil {
			logger.Warn("semantic: saving config: %v", err)
		}
	}

	logger.Debug("semantic: model=%s dim=%d vectors=%d", idx.model, idx.dim, len(idx.vectors))
	return idx, nil
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(1, int(math.Ceil(perSecond))))
}

func (idx *Index) fail(table string, err error) {
	logger.Warn("semantic: table %s not loaded: %v", table, err)
	idx.report.Add(table, err)
}

// LoadReport describes how the index was restored.
func (idx *Index) LoadReport() domain.LoadReport {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.report
}

// Model returns the embedding model the vectors belong to.
func (idx *Index) Model() string {
	return idx.model
}

// Dimensions returns the vector size, or 0 while unknown.
func (idx *Index) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dim
}

// IsReady reports whether the index can answer queries.
func (idx *Index) IsReady() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dim > 0 && len(idx.vectors) > 0
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// IndexChunk embeds text and stores the vector under chunkID.
func (idx *Index) IndexChunk(ctx context.Context, chunkID, text string) error {
	if chunkID == "" {
		return fmt.Errorf("%w: chunk id is required", domain.ErrInvalidInput)
	}
	vecs, err := idx.embed(ctx, []string{text})
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.store(chunkID, vecs[0]); err != nil {
		return err
	}
	return idx.persist(ctx)
}

// EnsureIndex embeds entries whose id has no vector yet, in batches. Vectors
// from batches that succeeded are kept even when a later batch fails.
func (idx *Index) EnsureIndex(ctx context.Context, entries []driven.IndexEntry) (int, error) {
	idx.mu.RLock()
	pending := make([]driven.IndexEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ChunkID == "" {
			continue
		}
		if _, ok := idx.vectors[e.ChunkID]; ok {
			continue
		}
		if _, ok := seen[e.ChunkID]; ok {
			continue
		}
		seen[e.ChunkID] = struct{}{}
		pending = append(pending, e)
	}
	idx.mu.RUnlock()

	added := 0
	var batchErr error
	for start := 0; start < len(pending); start += idx.batch {
		end := min(start+idx.batch, len(pending))
		texts := make([]string, 0, end-start)
		for _, e := range pending[start:end] {
			texts = append(texts, e.Text)
		}

		vecs, err := idx.embed(ctx, texts)
		if err != nil {
			batchErr = err
			break
		}

		idx.mu.Lock()
		for i, e := range pending[start:end] {
			if err := idx.store(e.ChunkID, vecs[i]); err != nil {
				batchErr = err
				break
			}
			added++
		}
		idx.mu.Unlock()
		if batchErr != nil {
			break
		}
	}

	if added > 0 {
		idx.mu.Lock()
		err := idx.persist(ctx)
		idx.mu.Unlock()
		if err != nil {
			return added, err
		}
	}
	return added, batchErr
}

// Search embeds the query and returns up to limit hits with positive
// cosine similarity, best first, ties broken by ascending chunk id.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]driven.SearchHit, error) {
	if limit <= 0 || !idx.IsReady() || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vecs, err := idx.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	q := vecs[0]

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(q) != idx.dim {
		return nil, fmt.Errorf("semantic: query vector has %d dimensions, index has %d", len(q), idx.dim)
	}

	var hits []driven.SearchHit
	for id, vec := range idx.vectors {
		if score := cosine(q, vec); score > 0 {
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

// Reset drops every stored vector. The empty state is persisted.
func (idx *Index) Reset(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors = make(map[string][]float32)
	return idx.persist(ctx)
}

// embed calls the backend under the rate limiter and per-call timeout.
func (idx *Index) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := idx.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("semantic: rate limiter: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, idx.timeout)
	defer cancel()

	vecs, err := idx.backend.EmbedBatch(callCtx, texts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out after %s", domain.ErrEmbeddingUnavailable, idx.timeout)
		}
		return nil, fmt.Errorf("semantic: embedding: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("semantic: backend returned %d vectors for %d texts", len(vecs), len(texts))
	}
	return vecs, nil
}

// store records one vector, fixing the dimension on first use.
// Callers hold the write lock.
func (idx *Index) store(chunkID string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("semantic: empty vector for %s", chunkID)
	}
	if idx.dim == 0 {
		idx.dim = len(vec)
	}
	if len(vec) != idx.dim {
		return fmt.Errorf("semantic: vector for %s has %d dimensions, want %d", chunkID, len(vec), idx.dim)
	}
	idx.vectors[chunkID] = vec
	return nil
}

func (idx *Index) persist(ctx context.Context) error {
	if err := snapshot.Save(ctx, idx.tables, TableEmbeddings, idx.vectors); err != nil {
		return err
	}
	return snapshot.Save(ctx, idx.tables, TableMeta, meta{Version: metaVersion, Model: idx.model, Dimensions: idx.dim})
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
