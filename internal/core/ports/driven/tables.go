package driven

import "context"

// TableStore persists whole tables as opaque JSON documents.
// Every Save replaces the entire table and must be atomic: a crash
// leaves either the previous or the new table, never a torn write.
type TableStore interface {
	// Name identifies the backend (e.g. "jsonfile", "sqlite").
	Name() string

	// Load returns the stored table bytes, or domain.ErrNotFound if the
	// table has never been saved.
	Load(ctx context.Context, table string) ([]byte, error)

	// Save atomically replaces the table.
	Save(ctx context.Context, table string, data []byte) error

	// Close releases resources.
	Close() error
}
