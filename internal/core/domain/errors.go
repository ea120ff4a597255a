package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist or is tombstoned.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown backend, digest or chunker name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIntegrity indicates stored bytes no longer hash to their address.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrLoadFailed indicates persisted state could not be fully loaded.
	ErrLoadFailed = errors.New("load failed")

	// ErrChunkAccounting indicates a chunk whose byte length disagrees with
	// its text. This is never expected and is always a hard error.
	ErrChunkAccounting = errors.New("chunk byte accounting mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic search degrades to lexical search without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store closed")
)
