// Package testing holds small test-scaffolding helpers shared across
// package _test.go files (fixture loading, temp project directories),
// adapted from the teacher's internal/testing package.
package testing

import (
	"os"
	"path/filepath"
	"testing"
)

// TempProjectDir creates a temporary persist_dir for a test and returns
// its path; cleanup is registered automatically via t.Cleanup.
func TempProjectDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "traceai-test-*")
	if err != nil {
		t.Fatalf("TempProjectDir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// Fixture reads a file under a package's testdata/ directory.
func Fixture(t *testing.T, relPath string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", relPath))
	if err != nil {
		t.Fatalf("Fixture(%s): %v", relPath, err)
	}
	return data
}

// WriteFixture writes content into dir/name, creating parent directories
// as needed, for tests that build an ad hoc file tree to ingest.
func WriteFixture(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("WriteFixture mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	return path
}
