package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(32)
	v1, err := e.Embed(context.Background(), "ExtractCustomers")
	require.NoError(t, err)
	v2, err := e.Embed(context.Background(), "ExtractCustomers")
	require.NoError(t, err)
	require.Equal(t, v1, v2)

	v3, err := e.Embed(context.Background(), "MergeToWarehouse")
	require.NoError(t, err)
	require.NotEqual(t, v1, v3)
}

func TestCosineSimilarity_IdenticalVectorsScoreOne(t *testing.T) {
	v := []float32{0.6, 0.8}
	require.InDelta(t, 1.0, CosineSimilarity(v, v), 0.0001)
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	require.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
}

func TestMemoryIndex_UpsertSearchDelete(t *testing.T) {
	idx := NewMemoryIndex()
	embedder := NewHashEmbedder(16)
	ctx := context.Background()

	texts := map[string]string{
		"comp:extract": "ExtractCustomers reads Customer table",
		"comp:merge":    "MergeToWarehouse writes Customer table",
		"comp:agg":      "AggregateSales reads Customer table",
	}
	for id, text := range texts {
		vec, err := embedder.Embed(ctx, text)
		require.NoError(t, err)
		require.NoError(t, idx.Upsert(ctx, Entry{ID: id, Text: text, Vector: vec}))
	}
	require.Equal(t, 3, idx.Len())

	queryVec, err := embedder.Embed(ctx, "ExtractCustomers reads Customer table")
	require.NoError(t, err)
	hits, err := idx.Search(ctx, queryVec, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "comp:extract", hits[0].ID)
	require.InDelta(t, 1.0, hits[0].Similarity, 0.0001)

	require.NoError(t, idx.Delete(ctx, "comp:extract"))
	require.Equal(t, 2, idx.Len())
}

func TestMemoryIndex_SearchEmpty(t *testing.T) {
	idx := NewMemoryIndex()
	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestMemoryIndex_SearchFiltersByMetadata(t *testing.T) {
	idx := NewMemoryIndex()
	embedder := NewHashEmbedder(16)
	ctx := context.Background()

	vec, err := embedder.Embed(ctx, "Customer table reader")
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx,
		Entry{ID: "comp:extract", Text: "Customer table reader", Vector: vec, Metadata: map[string]string{"node_kind": "component"}},
		Entry{ID: "entity:customer", Text: "Customer table reader", Vector: vec, Metadata: map[string]string{"node_kind": "data_entity"}},
	))

	hits, err := idx.Search(ctx, vec, 10, map[string]string{"node_kind": "data_entity"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "entity:customer", hits[0].ID)
	require.Equal(t, "data_entity", hits[0].Metadata["node_kind"])
}
