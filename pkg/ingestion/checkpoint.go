package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Checkpoint tracks content hashes of already-committed documents so a
// re-run of the same directory skips unchanged files, per spec's
// checkpoint-based idempotence. Adapted from the teacher's Checkpoint
// (pkg/ingestion/checkpoint.go), trimmed to what an in-memory graph commit
// actually needs: just the path -> content-hash map.
type Checkpoint struct {
	ProjectID  string            `json:"project_id"`
	FileHashes map[string]string `json:"file_hashes"`
}

// CheckpointManager persists a Checkpoint to disk as a single JSON file,
// written atomically via temp-file-then-rename.
type CheckpointManager struct {
	checkpointPath string
}

// NewCheckpointManager returns a manager rooted at checkpointPath (a
// directory). An empty path defaults to the current directory, matching
// the teacher's fallback.
func NewCheckpointManager(checkpointPath string) *CheckpointManager {
	return &CheckpointManager{checkpointPath: checkpointPath}
}

func (cm *CheckpointManager) path(projectID string) string {
	name := fmt.Sprintf("checkpoint-%s.json", projectID)
	if cm.checkpointPath != "" {
		return filepath.Join(cm.checkpointPath, name)
	}
	return name
}

// Load reads a Checkpoint from disk, returning (nil, nil) if none exists
// yet.
func (cm *CheckpointManager) Load(projectID string) (*Checkpoint, error) {
	data, err := os.ReadFile(cm.path(projectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	if cp.FileHashes == nil {
		cp.FileHashes = map[string]string{}
	}
	return &cp, nil
}

// Save writes cp to disk, creating the checkpoint directory if needed.
func (cm *CheckpointManager) Save(cp *Checkpoint) error {
	path := cm.path(cp.ProjectID)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// Clear removes a project's checkpoint file.
func (cm *CheckpointManager) Clear(projectID string) error {
	if err := os.Remove(cm.path(projectID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}
