// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the store to function:
//
//   - ObjectStore: Content-addressed immutable blobs
//   - Digester: Content hashing used for chunk ids and object addresses
//   - TableStore: Whole-table persistence backend (JSON files, SQLite, Badger)
//   - MetadataIndex: Documents, chunks, facts, summaries and tombstones
//   - LexicalIndex: TF-IDF search over chunk text. Always present.
//   - Chunker: Splits text into spans
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These may be absent - the store degrades gracefully:
//
//   - SemanticIndex: Embedding search. A Null implementation stands in when
//     no backend is available, so callers never branch on availability.
//   - EmbeddingService: Generates vectors for the SemanticIndex.
//   - Normaliser: Extracts plain text from a markup format before chunking
//   - NormaliserRegistry: Selects the normaliser for a document kind
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driven
