package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traceai/engine/pkg/ir"
)

func TestInitProject_CreatesPersistDirAndConfig(t *testing.T) {
	base := t.TempDir()
	persistDir := filepath.Join(base, "proj1")

	proj, err := InitProject(ProjectConfig{ProjectID: "proj1", PersistDir: persistDir}, nil)
	require.NoError(t, err)
	defer proj.Close()

	require.FileExists(t, filepath.Join(persistDir, configFileName))
	require.Equal(t, "proj1", proj.Config.ProjectID)
	require.Equal(t, 16, proj.Config.EmbeddingDimensions)
	require.Equal(t, 10, proj.Config.MaxConcurrentParsers)
	require.NotNil(t, proj.Graph)
	require.NotNil(t, proj.Index)
	require.NotNil(t, proj.Embedder)
}

func TestOpenProject_MissingReturnsError(t *testing.T) {
	_, err := OpenProject(filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
}

func TestOpenProject_ReopensInitializedProject(t *testing.T) {
	persistDir := filepath.Join(t.TempDir(), "proj2")
	proj, err := InitProject(ProjectConfig{ProjectID: "proj2", PersistDir: persistDir}, nil)
	require.NoError(t, err)
	require.NoError(t, proj.Close())

	reopened, err := OpenProject(persistDir, nil)
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, "proj2", reopened.Config.ProjectID)
}

func TestProject_SaveAndReloadGraphSnapshot(t *testing.T) {
	persistDir := filepath.Join(t.TempDir(), "proj3")
	proj, err := InitProject(ProjectConfig{ProjectID: "proj3", PersistDir: persistDir}, nil)
	require.NoError(t, err)

	docID := ir.DocumentID("a.csv", "h1")
	pd := &ir.ParsedDocument{
		Document:     ir.Document{ID: docID, Name: "a", Kind: ir.KindCSVLineage, SourcePath: "a.csv", ContentHash: "h1"},
		DataEntities: []ir.DataEntity{{ID: ir.DataEntityID("", "Customer"), Name: "Customer", EntityType: ir.EntityTable}},
	}
	_, err = proj.Graph.AddDocument(context.Background(), pd)
	require.NoError(t, err)
	require.NoError(t, proj.Save())
	require.NoError(t, proj.Close())

	reopened, err := OpenProject(persistDir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	stats := reopened.Graph.Snapshot().Stats()
	require.Greater(t, stats.Nodes, 0)
}

func TestListProjects(t *testing.T) {
	base := t.TempDir()
	_, err := InitProject(ProjectConfig{ProjectID: "p1", PersistDir: filepath.Join(base, "p1")}, nil)
	require.NoError(t, err)
	_, err = InitProject(ProjectConfig{ProjectID: "p2", PersistDir: filepath.Join(base, "p2")}, nil)
	require.NoError(t, err)

	projects, err := ListProjects(base)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"p1", "p2"}, projects)
}

func TestListProjects_MissingBaseDirIsNotError(t *testing.T) {
	projects, err := ListProjects(filepath.Join(t.TempDir(), "nonexistent"))
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestInitProject_RequiresProjectID(t *testing.T) {
	_, err := InitProject(ProjectConfig{PersistDir: t.TempDir()}, nil)
	require.Error(t, err)
}
