// Package memory provides in-memory adapters for tests and ephemeral stores.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
)

// Ensure TableStore implements the interface.
var _ driven.TableStore = (*TableStore)(nil)

// TableStore is an in-memory implementation of driven.TableStore.
// Saved bytes are copied so callers may reuse their buffers.
type TableStore struct {
	mu     sync.RWMutex
	tables map[string][]byte
	saves  map[string]int
}

// NewTableStore creates an empty in-memory table store.
func NewTableStore() *TableStore {
	return &TableStore{
		tables: make(map[string][]byte),
		saves:  make(map[string]int),
	}
}

// Name returns "memory".
func (s *TableStore) Name() string {
	return "memory"
}

// Load returns a copy of the stored table.
func (s *TableStore) Load(_ context.Context, table string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.tables[table]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save replaces the table.
func (s *TableStore) Save(_ context.Context, table string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append([]byte(nil), data...)
	s.saves[table]++
	return nil
}

// Put seeds a table directly, bypassing save accounting. Useful for
// simulating corrupted or hand-written state in tests.
func (s *TableStore) Put(table string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append([]byte(nil), data...)
}

// Saves returns how many times table has been saved.
func (s *TableStore) Saves(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves[table]
}

// Close is a no-op.
func (s *TableStore) Close() error {
	return nil
}
