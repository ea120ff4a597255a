package driven

import "context"

// SearchHit is a scored chunk id returned by a secondary index.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the cosine similarity to the query (0-1 for TF-IDF).
	Score float64
}

// IndexEntry is a chunk to be indexed.
type IndexEntry struct {
	ChunkID string
	Text    string
}

// ChunkIndex is the shape shared by the secondary indices. Secondary
// indices are derived from chunk text and may lag the MetadataIndex;
// they return ids only and never decide visibility.
type ChunkIndex interface {
	// IndexChunk adds or refreshes one chunk.
	IndexChunk(ctx context.Context, chunkID, text string) error

	// EnsureIndex indexes every entry whose id is not yet present.
	// It returns the number of entries newly indexed.
	EnsureIndex(ctx context.Context, entries []IndexEntry) (int, error)

	// Search returns up to limit hits with strictly positive scores,
	// best first, ties broken by ascending chunk id.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)

	// Len returns the number of indexed chunks.
	Len() int

	// Reset drops all indexed state so the index can be rebuilt.
	Reset(ctx context.Context) error
}

// LexicalIndex is the always-available TF-IDF index.
type LexicalIndex interface {
	ChunkIndex
}

// SemanticIndex is the optional embedding index. When no embedding backend
// is available every operation is a no-op and IsReady returns false.
type SemanticIndex interface {
	ChunkIndex

	// IsReady is true only when the backend is available, the vector
	// dimension is known and at least one vector is stored. A false
	// value means "not ready yet", not "no matches".
	IsReady() bool
}
