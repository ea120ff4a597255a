// Package domain defines the core entities of the lorekeep knowledge store.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested source text with its metadata
//   - Chunk: A content-addressed segment of a document
//   - Fact: A subject/predicate/object triple written back by consumers
//   - Summary: A conversation summary written back by consumers
//   - Tombstone: An append-only soft-deletion marker
//   - EvidencePack: Ranked chunks plus verifiable citations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
