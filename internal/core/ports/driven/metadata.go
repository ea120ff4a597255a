package driven

import (
	"context"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

// MetadataIndex holds the primary tables of the store: documents, chunks,
// the doc->chunk-ids mapping, facts, summaries and tombstones.
//
// Visibility: every Get returns domain.ErrNotFound for an id that has a
// tombstone, whether or not the row still exists. List operations skip
// tombstoned rows and return the rest in insertion order.
type MetadataIndex interface {
	// PutDoc stores a document and resets its chunk-id list to empty.
	PutDoc(ctx context.Context, doc *domain.Document) error

	// GetDoc retrieves a visible document.
	GetDoc(ctx context.Context, id string) (*domain.Document, error)

	// ListDocs returns visible documents in insertion order.
	ListDocs(ctx context.Context) ([]domain.Document, error)

	// PutChunk stores a chunk and appends its id to the parent's chunk list.
	PutChunk(ctx context.Context, chunk *domain.Chunk) error

	// GetChunk retrieves a visible chunk.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ChunkIDsForDoc returns the raw chunk-id list recorded for a document,
	// including tombstoned ids. Used to capture a cascade set.
	ChunkIDsForDoc(ctx context.Context, docID string) ([]string, error)

	// GetChunksForDoc returns the document's visible chunks in list order.
	GetChunksForDoc(ctx context.Context, docID string) ([]domain.Chunk, error)

	// PutFact stores a fact.
	PutFact(ctx context.Context, fact *domain.Fact) error

	// GetFact retrieves a visible fact.
	GetFact(ctx context.Context, id string) (*domain.Fact, error)

	// ListFacts returns visible facts in insertion order.
	ListFacts(ctx context.Context) ([]domain.Fact, error)

	// PutSummary stores a summary.
	PutSummary(ctx context.Context, summary *domain.Summary) error

	// GetSummary retrieves a visible summary.
	GetSummary(ctx context.Context, id string) (*domain.Summary, error)

	// ListSummaries returns visible summaries in insertion order.
	ListSummaries(ctx context.Context) ([]domain.Summary, error)

	// PutTombstone appends a tombstone and hides its target immediately.
	PutTombstone(ctx context.Context, tombstone *domain.Tombstone) error

	// ListTombstones returns every tombstone in insertion order.
	ListTombstones(ctx context.Context) ([]domain.Tombstone, error)

	// IsDeleted reports whether id has a tombstone.
	IsDeleted(id string) bool

	// Stats counts visible rows.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// LoadReport describes how the index was restored at open.
	LoadReport() domain.LoadReport
}
