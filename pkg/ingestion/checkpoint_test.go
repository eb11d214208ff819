package ingestion

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckpointManager_LoadMissingReturnsNil(t *testing.T) {
	cm := NewCheckpointManager(t.TempDir())
	cp, err := cm.Load("proj")
	require.NoError(t, err)
	require.Nil(t, cp)
}

func TestCheckpointManager_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cm := NewCheckpointManager(dir)
	cp := &Checkpoint{ProjectID: "proj", FileHashes: map[string]string{"a.dtsx": "hash1"}}
	require.NoError(t, cm.Save(cp))

	loaded, err := cm.Load("proj")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, "proj", loaded.ProjectID)
	require.Equal(t, "hash1", loaded.FileHashes["a.dtsx"])

	require.NoFileExists(t, filepath.Join(dir, "checkpoint-proj.json.tmp"))
}

func TestCheckpointManager_SaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	cm := NewCheckpointManager(dir)
	require.NoError(t, cm.Save(&Checkpoint{ProjectID: "proj", FileHashes: map[string]string{"a.dtsx": "h1"}}))
	require.NoError(t, cm.Save(&Checkpoint{ProjectID: "proj", FileHashes: map[string]string{"a.dtsx": "h2"}}))

	loaded, err := cm.Load("proj")
	require.NoError(t, err)
	require.Equal(t, "h2", loaded.FileHashes["a.dtsx"])
}

func TestCheckpointManager_Clear(t *testing.T) {
	dir := t.TempDir()
	cm := NewCheckpointManager(dir)
	require.NoError(t, cm.Save(&Checkpoint{ProjectID: "proj", FileHashes: map[string]string{}}))
	require.NoError(t, cm.Clear("proj"))

	loaded, err := cm.Load("proj")
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestCheckpointManager_ClearMissingIsNotError(t *testing.T) {
	cm := NewCheckpointManager(t.TempDir())
	require.NoError(t, cm.Clear("never-existed"))
}
