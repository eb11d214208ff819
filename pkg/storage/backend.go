package storage

import "context"

// QueryResult is the tabular shape every Backend.Query call returns,
// independent of the underlying SQL driver.
type QueryResult struct {
	Headers []string
	Rows    [][]any
}

// Backend is the interface every persistence implementation must satisfy.
// The embedded SQLite implementation is the only one this module ships;
// the interface is kept narrow so a remote backend could be added later
// without touching callers.
type Backend interface {
	// Query runs a read-only statement and returns its rows.
	Query(ctx context.Context, query string, args ...any) (*QueryResult, error)

	// Execute runs a mutating statement (insert, update, delete, DDL).
	Execute(ctx context.Context, query string, args ...any) error

	// Close releases the backend's resources.
	Close() error
}
