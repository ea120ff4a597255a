package lexical

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
)

func openIndex(t *testing.T, tables *memory.TableStore) *Index {
	t.Helper()
	idx, err := Open(context.Background(), tables)
	require.NoError(t, err)
	return idx
}

func TestOpen_NilTables(t *testing.T) {
	_, err := Open(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_SearchEmpty(t *testing.T) {
	idx := openIndex(t, memory.NewTableStore())

	hits, err := idx.Search(context.Background(), "fox", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, domain.LoadClean, idx.LoadReport().Status())
}

func TestIndex_WeightFormula(t *testing.T) {
	ctx := context.Background()
	idx := openIndex(t, memory.NewTableStore())

	require.NoError(t, idx.IndexChunk(ctx, "c1", "fox fox dog"))

	// n_docs=1, df(fox)=df(dog)=1, idf = ln(2/2)+1 = 1.
	vec := idx.vectors["c1"]
	assert.InDelta(t, 1.0, vec["fox"], 1e-12)
	assert.InDelta(t, 0.75, vec["dog"], 1e-12)

	require.NoError(t, idx.IndexChunk(ctx, "c2", "cat"))
	// c2 is weighed against n_docs=2, df(cat)=1: ln(3/2)+1.
	assert.InDelta(t, math.Log(1.5)+1, idx.vectors["c2"]["cat"], 1e-12)
	// c1 keeps its original weights.
	assert.InDelta(t, 1.0, idx.vectors["c1"]["fox"], 1e-12)
	assert.Equal(t, 2, idx.NDocs())
}

func TestIndex_SearchRanksAndFilters(t *testing.T) {
	ctx := context.Background()
	idx := openIndex(t, memory.NewTableStore())

	_, err := idx.EnsureIndex(ctx, []driven.IndexEntry{
		{ChunkID: "c1", Text: "the quick brown fox"},
		{ChunkID: "c2", Text: "fox fox fox"},
		{ChunkID: "c3", Text: "lazy dog sleeps"},
	})
	require.NoError(t, err)

	hits, err := idx.Search(ctx, "fox", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c2", hits[0].ChunkID)
	assert.Equal(t, "c1", hits[1].ChunkID)
	for _, h := range hits {
		assert.Greater(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0+1e-9)
	}

	hits, err = idx.Search(ctx, "fox", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = idx.Search(ctx, "fox", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(ctx, "unicorn", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_SearchTieBreaksByID(t *testing.T) {
	ctx := context.Background()
	idx := openIndex(t, memory.NewTableStore())

	_, err := idx.EnsureIndex(ctx, []driven.IndexEntry{
		{ChunkID: "zz", Text: "shared words"},
		{ChunkID: "aa", Text: "shared words"},
	})
	require.NoError(t, err)

	hits, err := idx.Search(ctx, "shared", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "aa", hits[0].ChunkID)
	assert.Equal(t, "zz", hits[1].ChunkID)
}

func TestIndex_EnsureIndexSkipsPresentAndPersistsOnce(t *testing.T) {
	ctx := context.Background()
	tables := memory.NewTableStore()
	idx := openIndex(t, tables)

	n, err := idx.EnsureIndex(ctx, []driven.IndexEntry{
		{ChunkID: "c1", Text: "alpha beta"},
		{ChunkID: "c2", Text: "beta gamma"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, tables.Saves(TableVectors))

	n, err = idx.EnsureIndex(ctx, []driven.IndexEntry{
		{ChunkID: "c1", Text: "alpha beta"},
		{ChunkID: "c3", Text: "delta"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, tables.Saves(TableVectors))

	n, err = idx.EnsureIndex(ctx, []driven.IndexEntry{{ChunkID: "c3", Text: "delta"}})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, tables.Saves(TableVectors))
	assert.Equal(t, 2, idx.df["beta"])
	assert.Equal(t, 1, idx.df["delta"])
}

func TestIndex_ReindexSameIDKeepsDF(t *testing.T) {
	ctx := context.Background()
	idx := openIndex(t, memory.NewTableStore())

	require.NoError(t, idx.IndexChunk(ctx, "c1", "fox"))
	require.NoError(t, idx.IndexChunk(ctx, "c1", "fox"))

	assert.Equal(t, 1, idx.df["fox"])
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_Reload(t *testing.T) {
	ctx := context.Background()
	tables := memory.NewTableStore()
	idx := openIndex(t, tables)
	require.NoError(t, idx.IndexChunk(ctx, "c1", "quick fox"))
	require.NoError(t, idx.IndexChunk(ctx, "c2", "lazy dog"))

	before, err := idx.Search(ctx, "fox", 5)
	require.NoError(t, err)

	reloaded := openIndex(t, tables)
	assert.Equal(t, 2, reloaded.Len())
	assert.Equal(t, 2, reloaded.NDocs())
	assert.True(t, reloaded.Has("c1"))

	after, err := reloaded.Search(ctx, "fox", 5)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestIndex_PartialLoad(t *testing.T) {
	ctx := context.Background()
	tables := memory.NewTableStore()
	idx := openIndex(t, tables)
	require.NoError(t, idx.IndexChunk(ctx, "c1", "quick fox"))

	tables.Put(TableVectors, []byte("[broken"))

	reloaded := openIndex(t, tables)
	report := reloaded.LoadReport()
	assert.Equal(t, domain.LoadPartial, report.Status())
	assert.Zero(t, reloaded.Len())
	// n_docs survives from the meta table.
	assert.Equal(t, 1, reloaded.NDocs())

	hits, err := reloaded.Search(ctx, "fox", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_Reset(t *testing.T) {
	ctx := context.Background()
	tables := memory.NewTableStore()
	idx := openIndex(t, tables)
	require.NoError(t, idx.IndexChunk(ctx, "c1", "quick fox"))

	require.NoError(t, idx.Reset(ctx))
	assert.Zero(t, idx.Len())
	assert.Zero(t, idx.NDocs())

	assert.Zero(t, openIndex(t, tables).Len())
}
