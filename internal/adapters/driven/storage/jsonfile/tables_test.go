package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

func TestTableStore_SaveLoad(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "docs", []byte(`{"d1":{}}`)))

	data, err := s.Load(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, `{"d1":{}}`, string(data))
	assert.Equal(t, filepath.Join(root, "index", "docs.json"), s.Path("docs"))
	assert.FileExists(t, filepath.Join(root, "index", "docs.json"))
}

func TestTableStore_Load_Missing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load(context.Background(), "facts")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTableStore_Save_ReplacesWholeTable(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "df", []byte(`{"a":1,"b":2,"c":3}`)))
	require.NoError(t, s.Save(ctx, "df", []byte(`{"a":1}`)))

	data, err := os.ReadFile(s.Path("df"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
	assert.Equal(t, "jsonfile", s.Name())
	assert.NoError(t, s.Close())
}
