// Package bootstrap wires a project's persist_dir into a usable engine:
// a graph (loaded from its snapshot if one exists), a SQLite-backed
// vector index sharing the same directory, and the project config that
// named them. Adapted from the teacher's internal/bootstrap package
// (ProjectConfig/InitProject/OpenProject/ListProjects), generalized from
// a single Cozo-backed data directory to a persist_dir holding both a
// graph snapshot file and an embeddings database.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/traceai/engine/pkg/graph"
	"github.com/traceai/engine/pkg/storage"
	"github.com/traceai/engine/pkg/vectorindex"
)

const (
	configFileName   = "traceai.yaml"
	snapshotFileName = "graph.snapshot"
)

// ProjectConfig is the contents of a project's traceai.yaml, plus the
// runtime fields (ProjectID, PersistDir) needed to locate it.
type ProjectConfig struct {
	ProjectID string `yaml:"project_id"`

	// PersistDir holds the graph snapshot and the embeddings database.
	// Defaults to ~/.traceai/projects/<project_id>.
	PersistDir string `yaml:"persist_dir"`

	// EmbeddingDimensions sizes vectors written to the embeddings
	// database. Defaults to 16 (the deterministic hash embedder's
	// dimension); set higher when wiring an OllamaEmbedder.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`

	// MaxConcurrentParsers bounds ingestion's worker pool. Defaults to 10.
	MaxConcurrentParsers int `yaml:"max_concurrent_parsers"`
}

func (c *ProjectConfig) applyDefaults() error {
	if c.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if c.PersistDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home dir: %w", err)
		}
		c.PersistDir = filepath.Join(homeDir, ".traceai", "projects", c.ProjectID)
	}
	if c.EmbeddingDimensions == 0 {
		c.EmbeddingDimensions = 16
	}
	if c.MaxConcurrentParsers == 0 {
		c.MaxConcurrentParsers = 10
	}
	return nil
}

// Project bundles everything an ingestion run or a query needs: the
// graph (already loaded from its snapshot, if any), the vector index,
// a default embedder sized to match, and the resolved config.
type Project struct {
	Config   ProjectConfig
	Graph    *graph.Graph
	Backend  *storage.EmbeddedBackend
	Index    vectorindex.Index
	Embedder vectorindex.Embedder
}

func snapshotPath(persistDir string) string {
	return filepath.Join(persistDir, snapshotFileName)
}

func configPath(persistDir string) string {
	return filepath.Join(persistDir, configFileName)
}

// InitProject creates persist_dir, writes traceai.yaml, opens the
// embedded backend, and ensures its schema exists. Idempotent: calling
// it again against an existing persist_dir just re-opens it.
func InitProject(config ProjectConfig, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}

	logger.Info("bootstrap.project.init.start",
		"project_id", config.ProjectID,
		"persist_dir", config.PersistDir,
	)

	if err := os.MkdirAll(config.PersistDir, 0755); err != nil {
		return nil, fmt.Errorf("create persist dir: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal project config: %w", err)
	}
	if err := os.WriteFile(configPath(config.PersistDir), data, 0644); err != nil {
		return nil, fmt.Errorf("write project config: %w", err)
	}

	proj, err := openBackendAndGraph(config, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("bootstrap.project.init.success",
		"project_id", config.ProjectID,
		"persist_dir", config.PersistDir,
	)
	return proj, nil
}

// OpenProject reads traceai.yaml from persistDir and wires up a Project.
// PersistDir is taken from the argument, not from the file; the other
// fields come from the file, with defaults applied to any left unset.
func OpenProject(persistDir string, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(configPath(persistDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project not found at %s (run 'traceai init' first)", persistDir)
		}
		return nil, fmt.Errorf("read project config: %w", err)
	}
	var config ProjectConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse project config: %w", err)
	}
	config.PersistDir = persistDir
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}

	logger.Debug("bootstrap.project.open", "project_id", config.ProjectID, "persist_dir", config.PersistDir)
	return openBackendAndGraph(config, logger)
}

func openBackendAndGraph(config ProjectConfig, logger *slog.Logger) (*Project, error) {
	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
		DataDir:   config.PersistDir,
		ProjectID: config.ProjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("open embedded backend: %w", err)
	}
	if err := backend.EnsureSchema(context.Background()); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	g := graph.New()
	snapPath := snapshotPath(config.PersistDir)
	if _, err := os.Stat(snapPath); err == nil {
		loaded, err := graph.Load(snapPath)
		if err != nil {
			logger.Warn("bootstrap.snapshot.load.warning", "err", err)
		} else {
			g = loaded
		}
	}

	return &Project{
		Config:   config,
		Graph:    g,
		Backend:  backend,
		Index:    vectorindex.NewSQLiteIndex(backend),
		Embedder: vectorindex.NewHashEmbedder(config.EmbeddingDimensions),
	}, nil
}

// Save persists the graph snapshot to persist_dir. The vector index is
// already durable (it writes straight through to the embedded backend).
func (p *Project) Save() error {
	return p.Graph.Save(snapshotPath(p.Config.PersistDir))
}

// Close releases the project's storage backend.
func (p *Project) Close() error {
	return p.Backend.Close()
}

// ListProjects returns the project IDs found under baseDir (typically
// ~/.traceai/projects), one per subdirectory carrying a traceai.yaml.
func ListProjects(baseDir string) ([]string, error) {
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".traceai", "projects")
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects dir: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(configPath(filepath.Join(baseDir, entry.Name()))); err == nil {
			projects = append(projects, entry.Name())
		}
	}
	return projects, nil
}
