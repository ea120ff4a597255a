package driven

import (
	"context"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

// Record is a JSON-compatible value stored in the object store.
// Records are canonicalised (sorted keys, no whitespace) before hashing.
type Record = map[string]any

// ObjectStore is a content-addressed store of immutable records.
// Objects are never removed; soft deletion happens in the MetadataIndex.
type ObjectStore interface {
	// Put stores the record and returns its content address.
	// Putting identical content twice returns the same hash and writes nothing.
	Put(ctx context.Context, record Record) (string, error)

	// Get returns the record at hash. Missing and corrupted objects both
	// return domain.ErrNotFound.
	Get(ctx context.Context, hash string) (Record, error)

	// Exists reports whether an object file exists at hash. It does not verify it.
	Exists(ctx context.Context, hash string) bool

	// VerifyIntegrity re-derives the hash from the stored bytes.
	// It returns false, never an error, on any mismatch or decode failure.
	VerifyIntegrity(ctx context.Context, hash string) bool

	// List returns every stored hash in ascending order.
	List(ctx context.Context) ([]string, error)

	// Stats returns the object count and total stored bytes.
	Stats(ctx context.Context) (domain.ObjectStats, error)
}
