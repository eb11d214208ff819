package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// EmbeddedConfig configures the embedded backend.
type EmbeddedConfig struct {
	// DataDir is the directory the sqlite file lives in. Defaults to
	// ~/.traceai/data/<project_id>.
	DataDir string

	// ProjectID namespaces DataDir when it is left at its default.
	ProjectID string
}

// EmbeddedBackend implements Backend using a local SQLite database. This
// is the only backend the engine ships, mirroring the teacher's
// EmbeddedBackend as the standalone default.
type EmbeddedBackend struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewEmbeddedBackend opens (creating if necessary) a SQLite database under
// config.DataDir.
func NewEmbeddedBackend(config EmbeddedConfig) (*EmbeddedBackend, error) {
	if config.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		config.DataDir = filepath.Join(homeDir, ".traceai", "data")
		if config.ProjectID != "" {
			config.DataDir = filepath.Join(config.DataDir, config.ProjectID)
		}
	}

	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(config.DataDir, "traceai.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers at the driver level; a single connection
	// avoids SQLITE_BUSY under the engine's own single-writer discipline.
	db.SetMaxOpenConns(1)

	return &EmbeddedBackend{db: db}, nil
}

// Query runs a read-only statement.
func (b *EmbeddedBackend) Query(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("backend is closed")
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &QueryResult{Headers: cols}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result.Rows = append(result.Rows, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// Execute runs a mutating statement.
func (b *EmbeddedBackend) Execute(ctx context.Context, query string, args ...any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("backend is closed")
	}

	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("execute failed: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (b *EmbeddedBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

// DB returns the underlying *sql.DB for advanced operations outside the
// Backend interface (used by pkg/vectorindex's SQLite implementation to
// share one connection).
func (b *EmbeddedBackend) DB() *sql.DB {
	return b.db
}

// schema lists the DDL statements for every persisted entity. Mirrors the
// six IR entity types plus edges; each CREATE TABLE is IF NOT EXISTS so
// EnsureSchema is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		source_path TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		parsed_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS components (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		name TEXT NOT NULL,
		component_type TEXT,
		description TEXT,
		parse_partial INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS data_sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		locator TEXT NOT NULL,
		ref_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS data_entities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		ref_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS parameters (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		name TEXT NOT NULL,
		data_type TEXT,
		value TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS dependencies (
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		properties TEXT,
		PRIMARY KEY (from_id, to_id, kind)
	)`,
	`CREATE TABLE IF NOT EXISTS embeddings (
		node_id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		vector BLOB NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dependencies_to ON dependencies(to_id)`,
	`CREATE INDEX IF NOT EXISTS idx_components_document ON components(document_id)`,
}

// EnsureSchema creates TraceAI's tables if they do not already exist.
// Idempotent and safe to call on every startup.
func (b *EmbeddedBackend) EnsureSchema(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("backend is closed")
	}
	for _, stmt := range schema {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
