package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestDiscover_DefaultIncludesEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.dtsx")
	writeFile(t, root, "sub/b.cbl")

	result, err := Discover(root, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 2)
}

func TestDiscover_IncludeGlobFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.dtsx")
	writeFile(t, root, "b.cbl")

	result, err := Discover(root, []string{"**/*.dtsx"}, nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	require.Contains(t, result.Paths[0], "a.dtsx")
	require.Equal(t, 1, result.SkipReasons["not_included"])
}

func TestDiscover_ExcludeGlobWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.dtsx")
	writeFile(t, root, "vendor/skip.dtsx")

	result, err := Discover(root, []string{"**/*.dtsx"}, []string{"vendor/**"})
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	require.Contains(t, result.Paths[0], "keep.dtsx")
	require.Equal(t, 1, result.SkipReasons["excluded"])
}

func TestDiscover_EmptyRoot(t *testing.T) {
	root := t.TempDir()
	result, err := Discover(root, nil, nil)
	require.NoError(t, err)
	require.Empty(t, result.Paths)
}
