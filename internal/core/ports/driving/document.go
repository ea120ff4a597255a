package driving

import (
	"context"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

// KnowledgeStore is the public entry point of the store. It sequences
// ingestion and deletion and exposes retrieval.
type KnowledgeStore interface {
	Retriever

	// Ingest chunks text, stores every chunk and indexes it.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.Document, error)

	// Forget tombstones a document (cascading to its chunks), chunk, fact or
	// summary. An unknown id yields ForgetNotFound and writes nothing.
	Forget(ctx context.Context, id, reason string) (domain.ForgetResult, error)

	// PutFact validates and stores a fact, assigning an id if empty.
	PutFact(ctx context.Context, fact domain.Fact) (*domain.Fact, error)

	// PutSummary validates and stores a summary, assigning an id if empty.
	PutSummary(ctx context.Context, summary domain.Summary) (*domain.Summary, error)

	GetDoc(ctx context.Context, id string) (*domain.Document, error)
	ListDocs(ctx context.Context) ([]domain.Document, error)
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)
	GetChunksForDoc(ctx context.Context, docID string) ([]domain.Chunk, error)
	GetFact(ctx context.Context, id string) (*domain.Fact, error)
	ListFacts(ctx context.Context) ([]domain.Fact, error)
	GetSummary(ctx context.Context, id string) (*domain.Summary, error)
	ListSummaries(ctx context.Context) ([]domain.Summary, error)
	IsDeleted(id string) bool

	// Reindex rebuilds both secondary indices from visible chunks.
	Reindex(ctx context.Context) (int, error)

	// VerifyObjects scans the object store and reports corrupted objects.
	VerifyObjects(ctx context.Context) ([]domain.IntegrityFailure, error)

	// Stats aggregates counts from every component.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// LoadReport describes how persisted state was restored at open.
	LoadReport() domain.LoadReport

	// Close releases the persistence backend.
	Close() error
}
