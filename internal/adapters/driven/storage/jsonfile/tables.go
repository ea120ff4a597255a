// Package jsonfile stores each table as one JSON file under <root>/index.
// This is the default backend and the layout external tools expect:
// index/docs.json, index/chunks.json, index/vectors.json and so on.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/fsutil"
)

// Ensure TableStore implements the interface.
var _ driven.TableStore = (*TableStore)(nil)

// Dir is the index directory name under the store root.
const Dir = "index"

// TableStore persists tables as <root>/index/<table>.json.
type TableStore struct {
	mu  sync.Mutex
	dir string
}

// New creates the index directory if needed.
func New(root string) (*TableStore, error) {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	return &TableStore{dir: dir}, nil
}

// Name returns "jsonfile".
func (s *TableStore) Name() string {
	return "jsonfile"
}

// Load reads the table file.
func (s *TableStore) Load(_ context.Context, table string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(table))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading table %s: %w", table, err)
	}
	return data, nil
}

// Save replaces the table file via temp-file rename.
func (s *TableStore) Save(_ context.Context, table string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fsutil.WriteFileAtomic(s.Path(table), data, 0o600); err != nil {
		return fmt.Errorf("saving table %s: %w", table, err)
	}
	return nil
}

// Close is a no-op; files are closed after every write.
func (s *TableStore) Close() error {
	return nil
}

// Path returns the file path of table.
func (s *TableStore) Path(table string) string {
	return filepath.Join(s.dir, table+".json")
}
