package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/memory"
)

func TestLoad_Missing(t *testing.T) {
	var v map[string]int
	found, err := Load(context.Background(), memory.NewTableStore(), "df", &v)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTableStore()

	require.NoError(t, Save(ctx, store, "df", map[string]int{"fox": 2}))

	var v map[string]int
	found, err := Load(ctx, store, "df", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"fox": 2}, v)
}

func TestLoad_Malformed(t *testing.T) {
	store := memory.NewTableStore()
	store.Put("df", []byte("{oops"))

	var v map[string]int
	found, err := Load(context.Background(), store, "df", &v)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestSave_Unencodable(t *testing.T) {
	err := Save(context.Background(), memory.NewTableStore(), "bad", map[string]any{"c": make(chan int)})
	assert.Error(t, err)
}
