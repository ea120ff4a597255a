package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/adapters/driven/digest"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

func testSettings(t *testing.T, backend string) Settings {
	t.Helper()
	s := DefaultSettings()
	s.Dir = t.TempDir()
	s.Backend = backend
	return s
}

func TestLoadSettings_Defaults(t *testing.T) {
	s := LoadSettings(memory.NewConfigStore())

	assert.Equal(t, BackendJSONFile, s.Backend)
	assert.Equal(t, digest.SHA256, s.Digest)
	assert.True(t, s.AllowPartialLoad)
	assert.Equal(t, "fixed", s.Chunker.Strategy)
	assert.Equal(t, 1024, s.Chunker.Window)
	assert.Equal(t, 256, s.Chunker.Overlap)
	assert.Nil(t, s.Semantic.Enabled)
	assert.Equal(t, ProviderNone, s.Semantic.Provider)
	assert.Equal(t, DefaultAPIKeyEnv, s.Semantic.APIKeyEnv)

	assert.Equal(t, DefaultSettings(), LoadSettings(nil))
}

func TestLoadSettings_FromConfig(t *testing.T) {
	cfg := memory.NewConfigStore(map[string]any{
		"store.dir":                "/var/lore",
		"store.backend":            "SQLite",
		"store.digest":             "blake2b",
		"store.allow_partial_load": false,
		"chunker.strategy":         "paragraph",
		"chunker.window":           int64(256),
		"chunker.overlap":          0,
		"chunker.max_size":         2048,
		"semantic.enabled":         false,
		"semantic.provider":        "Ollama",
		"semantic.model":           "all-minilm",
		"semantic.timeout_seconds": 5,
		"semantic.rate_limit":      1.5,
	})

	s := LoadSettings(cfg)
	assert.Equal(t, "/var/lore", s.Dir)
	assert.Equal(t, BackendSQLite, s.Backend)
	assert.Equal(t, digest.BLAKE2b, s.Digest)
	assert.False(t, s.AllowPartialLoad)
	assert.Equal(t, ChunkerSettings{Strategy: "paragraph", Window: 256, Overlap: 0, MaxSize: 2048}, s.Chunker)
	require.NotNil(t, s.Semantic.Enabled)
	assert.False(t, *s.Semantic.Enabled)
	assert.Equal(t, ProviderOllama, s.Semantic.Provider)
	assert.Equal(t, "all-minilm", s.Semantic.Model)
	assert.Equal(t, 5*time.Second, s.Semantic.Timeout)
	assert.Equal(t, 1.5, s.Semantic.RateLimit)
}

func TestLoadSettings_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}
	s := LoadSettings(memory.NewConfigStore(map[string]any{"store.dir": "~/notes"}))
	assert.Equal(t, filepath.Join(home, "notes"), s.Dir)
}

func TestOpen_Backends(t *testing.T) {
	for _, backend := range []string{BackendJSONFile, BackendSQLite, BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			settings := testSettings(t, backend)

			a, err := Open(ctx, settings)
			require.NoError(t, err)
			doc, err := a.Store.Ingest(ctx, domain.IngestRequest{Title: "fox", Text: "The quick brown fox"})
			require.NoError(t, err)
			_, err = a.Store.PutFact(ctx, domain.Fact{Subject: "fox", Predicate: "is", Object: "quick", Confidence: 0.8})
			require.NoError(t, err)
			require.NoError(t, a.Close())

			reopened, err := Open(ctx, settings)
			require.NoError(t, err)
			defer reopened.Close()

			assert.Equal(t, domain.LoadClean, reopened.Store.LoadReport().Status())
			got, err := reopened.Store.GetDoc(ctx, doc.ID)
			require.NoError(t, err)
			assert.Equal(t, "fox", got.Title)

			hits, err := reopened.Store.SearchLexical(ctx, "fox", 5)
			require.NoError(t, err)
			assert.Len(t, hits, 1)

			facts, err := reopened.Store.ListFacts(ctx)
			require.NoError(t, err)
			assert.Len(t, facts, 1)
		})
	}
}

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, testSettings(t, BackendMemory))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Store.Ingest(ctx, domain.IngestRequest{Text: "in memory"})
	require.NoError(t, err)
}

func TestOpen_UnsupportedBackend(t *testing.T) {
	_, err := Open(context.Background(), testSettings(t, "postgres"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestOpen_UnsupportedDigest(t *testing.T) {
	settings := testSettings(t, BackendJSONFile)
	settings.Digest = "md5"
	_, err := Open(context.Background(), settings)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestOpen_DigestIsPinned(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t, BackendJSONFile)

	a, err := Open(ctx, settings)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	settings.Digest = digest.BLAKE2b
	_, err = Open(ctx, settings)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpen_PartialLoad(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t, BackendJSONFile)

	a, err := Open(ctx, settings)
	require.NoError(t, err)
	_, err = a.Store.Ingest(ctx, domain.IngestRequest{DocID: "d1", Text: "hello"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	corrupt := filepath.Join(settings.Dir, "index", "facts.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{broken"), 0o600))

	t.Run("allowed", func(t *testing.T) {
		a, err := Open(ctx, settings)
		require.NoError(t, err)
		defer a.Close()

		assert.Equal(t, domain.LoadPartial, a.Store.LoadReport().Status())
		_, err = a.Store.GetDoc(ctx, "d1")
		assert.NoError(t, err)
	})

	t.Run("refused", func(t *testing.T) {
		strict := settings
		strict.AllowPartialLoad = false
		_, err := Open(ctx, strict)
		assert.ErrorIs(t, err, domain.ErrLoadFailed)
	})
}

func TestOpen_SemanticUnavailable(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t, BackendJSONFile)
	settings.Semantic.Provider = ProviderOpenAI
	settings.Semantic.APIKeyEnv = "LOREKEEP_TEST_MISSING_KEY"
	t.Setenv("LOREKEEP_TEST_MISSING_KEY", "")

	a, err := Open(ctx, settings)
	require.NoError(t, err)
	defer a.Close()

	stats, err := a.Store.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, stats.SemanticReady)
}

func TestNewEmbeddingBackend(t *testing.T) {
	b, err := NewEmbeddingBackend(SemanticSettings{Provider: ProviderNone})
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = NewEmbeddingBackend(SemanticSettings{Provider: ProviderOllama, Model: "all-minilm"})
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "all-minilm", b.ModelName())

	t.Setenv("LOREKEEP_TEST_KEY", "sk-test")
	b, err = NewEmbeddingBackend(SemanticSettings{Provider: ProviderOpenAI, APIKeyEnv: "LOREKEEP_TEST_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", b.ModelName())

	_, err = NewEmbeddingBackend(SemanticSettings{Provider: "cohere"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestChunkers(t *testing.T) {
	chunkers := Chunkers(ChunkerSettings{Window: 10, Overlap: 0, MaxSize: 10})
	require.Contains(t, chunkers, "fixed")
	require.Contains(t, chunkers, "paragraph")
	assert.Equal(t, "paragraph", chunkers["paragraph"].Name())

	spans := chunkers["fixed"].Split("0123456789ABCDEFGHIJ")
	assert.Len(t, spans, 2)
}
