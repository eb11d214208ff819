package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traceai/engine/pkg/storage"
)

func setupSQLiteIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, backend.EnsureSchema(context.Background()))
	t.Cleanup(func() { _ = backend.Close() })
	return NewSQLiteIndex(backend)
}

func TestSQLiteIndex_UpsertSearchDelete(t *testing.T) {
	idx := setupSQLiteIndex(t)
	embedder := NewHashEmbedder(16)
	ctx := context.Background()

	vecA, err := embedder.Embed(ctx, "Customer table reader")
	require.NoError(t, err)
	vecB, err := embedder.Embed(ctx, "Order table writer")
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(ctx,
		Entry{ID: "a", Text: "Customer table reader", Vector: vecA},
		Entry{ID: "b", Text: "Order table writer", Vector: vecB},
	))
	require.Equal(t, 2, idx.Len())

	hits, err := idx.Search(ctx, vecA, 1, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "a", hits[0].ID)

	require.NoError(t, idx.Delete(ctx, "a"))
	require.Equal(t, 1, idx.Len())
}

func TestSQLiteIndex_UpsertOverwrites(t *testing.T) {
	idx := setupSQLiteIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, Entry{ID: "a", Text: "first", Vector: []float32{1, 0}}))
	require.NoError(t, idx.Upsert(ctx, Entry{ID: "a", Text: "second", Vector: []float32{0, 1}}))
	require.Equal(t, 1, idx.Len())

	hits, err := idx.Search(ctx, []float32{0, 1}, 1, nil)
	require.NoError(t, err)
	require.Equal(t, "second", hits[0].Text)
}

func TestSQLiteIndex_SearchFiltersByMetadata(t *testing.T) {
	idx := setupSQLiteIndex(t)
	embedder := NewHashEmbedder(16)
	ctx := context.Background()

	vec, err := embedder.Embed(ctx, "Customer table reader")
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx,
		Entry{ID: "comp:extract", Text: "Customer table reader", Vector: vec, Metadata: map[string]string{"node_kind": "component"}},
		Entry{ID: "entity:customer", Text: "Customer table reader", Vector: vec, Metadata: map[string]string{"node_kind": "data_entity"}},
	))

	hits, err := idx.Search(ctx, vec, 10, map[string]string{"node_kind": "component"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "comp:extract", hits[0].ID)
}
