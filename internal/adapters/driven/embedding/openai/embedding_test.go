package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

type fakeRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

func newServer(t *testing.T, seen *fakeRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
		case "/v1/embeddings":
			var req fakeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if seen != nil {
				*seen = req
			}
			// Answer out of order to exercise index mapping.
			data := make([]map[string]any, 0, len(req.Input))
			for i := len(req.Input) - 1; i >= 0; i-- {
				data = append(data, map[string]any{
					"object":    "embedding",
					"index":     i,
					"embedding": []float32{float32(len(req.Input[i])), 0.5},
				})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"model":  req.Model,
				"data":   data,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, 1536, s.Dimensions())
	assert.False(t, s.shorten)
	assert.NoError(t, s.Close())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	var seen fakeRequest
	srv := newServer(t, &seen)
	s, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "text-embedding-3-small", Dimensions: 256})
	require.NoError(t, err)

	vecs, err := s.EmbedBatch(context.Background(), []string{"a", "abc"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0.5}, vecs[0])
	assert.Equal(t, []float32{3, 0.5}, vecs[1])

	assert.Equal(t, []string{"a", "abc"}, seen.Input)
	assert.Equal(t, 256, seen.Dimensions)
}

func TestEmbed_Single(t *testing.T) {
	srv := newServer(t, nil)
	s, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "local-model"})
	require.NoError(t, err)
	assert.Zero(t, s.Dimensions())

	vec, err := s.Embed(context.Background(), "four")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 0.5}, vec)
	assert.Equal(t, 2, s.Dimensions())
}

func TestEmbedBatch_Empty(t *testing.T) {
	s, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	vecs, err := s.EmbedBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestPing(t *testing.T) {
	srv := newServer(t, nil)
	s, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))

	down, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1/v1"})
	require.NoError(t, err)
	assert.ErrorIs(t, down.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
}
