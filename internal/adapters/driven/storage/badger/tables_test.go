package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

func newInMemory(t *testing.T) *TableStore {
	t.Helper()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/data")
	assert.Equal(t, filepath.Join("/data", "index", "badger"), cfg.Path)
	assert.True(t, cfg.SyncWrites)
	assert.False(t, cfg.InMemory)
}

func TestTableStore_LoadMissing(t *testing.T) {
	s := newInMemory(t)

	_, err := s.Load(context.Background(), "docs")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "badger", s.Name())
}

func TestTableStore_SaveLoad(t *testing.T) {
	s := newInMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "docs", []byte(`{"d1":{}}`)))
	require.NoError(t, s.Save(ctx, "docs", []byte(`{"d2":{}}`)))
	require.NoError(t, s.Save(ctx, "chunks", []byte(`{}`)))

	data, err := s.Load(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, `{"d2":{}}`, string(data))

	names, err := s.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"chunks", "docs"}, names)
}

func TestTableStore_SaveEmptyName(t *testing.T) {
	s := newInMemory(t)
	assert.ErrorIs(t, s.Save(context.Background(), "", nil), domain.ErrInvalidInput)
}

func TestTableStore_Persistent(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	cfg := DefaultConfig(root)
	cfg.SyncWrites = false

	first, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "facts", []byte(`{"f":1}`)))
	require.NoError(t, first.Close())

	second, err := Open(cfg)
	require.NoError(t, err)
	defer second.Close()

	data, err := second.Load(ctx, "facts")
	require.NoError(t, err)
	assert.Equal(t, `{"f":1}`, string(data))
}
