package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil retriever returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetriever)
	})

	t.Run("read-only server", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("server with store", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Store: &mockStore{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingRetriever)
	assert.ErrorIs(t, (&Ports{Store: &mockStore{}}).Validate(), ErrMissingRetriever)
	assert.NoError(t, (&Ports{Retriever: &mockRetriever{}}).Validate())
}
