package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

func newServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/embeddings":
			if calls != nil {
				calls.Add(1)
			}
			var req embedRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Prompt == "fail" {
				http.Error(w, "model exploded", http.StatusInternalServerError)
				return
			}
			n := float64(len(req.Prompt))
			_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{n, 1, 0}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, 768, s.Dimensions())
	assert.Equal(t, DefaultConcurrency, s.concurrency)
	assert.NoError(t, s.Close())
}

func TestEmbed_LearnsDimensions(t *testing.T) {
	srv := newServer(t, nil)
	s := NewEmbeddingService(Config{BaseURL: srv.URL + "/", Model: "custom"})
	assert.Zero(t, s.Dimensions())

	vec, err := s.Embed(context.Background(), "abcd")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1, 0}, vec)
	assert.Equal(t, 3, s.Dimensions())
}

func TestEmbed_ServerError(t *testing.T) {
	srv := newServer(t, nil)
	s := NewEmbeddingService(Config{BaseURL: srv.URL})

	_, err := s.Embed(context.Background(), "fail")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "model exploded"))
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, &calls)
	s := NewEmbeddingService(Config{BaseURL: srv.URL, Concurrency: 2})

	vecs, err := s.EmbedBatch(context.Background(), []string{"a", "bbb", "cc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(3), vecs[1][0])
	assert.Equal(t, float32(2), vecs[2][0])
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbedBatch_Error(t *testing.T) {
	srv := newServer(t, nil)
	s := NewEmbeddingService(Config{BaseURL: srv.URL})

	_, err := s.EmbedBatch(context.Background(), []string{"ok", "fail"})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	srv := newServer(t, nil)
	assert.NoError(t, NewEmbeddingService(Config{BaseURL: srv.URL}).Ping(context.Background()))

	down := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})
	assert.ErrorIs(t, down.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
}
