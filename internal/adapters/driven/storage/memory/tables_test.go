package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

func TestTableStore_SaveLoad(t *testing.T) {
	s := NewTableStore()
	ctx := context.Background()

	buf := []byte(`{"a":1}`)
	require.NoError(t, s.Save(ctx, "docs", buf))
	buf[0] = 'X' // caller reuses buffer

	data, err := s.Load(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
	assert.Equal(t, 1, s.Saves("docs"))
}

func TestTableStore_Load_Missing(t *testing.T) {
	s := NewTableStore()
	_, err := s.Load(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTableStore_Put(t *testing.T) {
	s := NewTableStore()
	s.Put("facts", []byte("{broken"))

	data, err := s.Load(context.Background(), "facts")
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
	assert.Zero(t, s.Saves("facts"))
	assert.Equal(t, "memory", s.Name())
}
