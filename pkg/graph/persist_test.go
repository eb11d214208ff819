package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traceai/engine/pkg/ir"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	g := New()
	entID := ir.DataEntityID("", "Customer")
	_, err := g.AddDocument(context.Background(), sampleDoc("jobs/a.dtsx", "hash1", entID))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.gz")
	require.NoError(t, g.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	snap := loaded.Snapshot()
	require.Equal(t, g.Snapshot().Stats().Nodes, snap.Stats().Nodes)
	require.Equal(t, g.Snapshot().Stats().Edges, snap.Stats().Edges)
}
