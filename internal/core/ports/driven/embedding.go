// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, the semantic index is a no-op
// and hybrid search falls back to the lexical index.
//
// Note: This is separate from SemanticIndex which stores and searches vectors.
// EmbeddingService generates vectors; SemanticIndex stores them.
//
// Implementations include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the configured vector size, or 0 if it is only
	// known after the first embedding.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	// The semantic index uses it once at open to choose its strategy.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
