package ingestion

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DiscoverResult is the output of file discovery: every admitted path plus
// a count of how many candidates were skipped and why.
type DiscoverResult struct {
	Paths       []string
	SkipReasons map[string]int
}

// Discover walks root, expanding includeGlobs (relative to root; "**/*" if
// empty) and excluding anything matching excludeGlobs, deduplicating by
// absolute path. Grounded on the teacher's RepoLoader.LoadRepository
// walk-and-filter shape, rebuilt on doublestar glob matching instead of a
// hand-rolled language/extension allowlist.
func Discover(root string, includeGlobs, excludeGlobs []string) (*DiscoverResult, error) {
	if len(includeGlobs) == 0 {
		includeGlobs = []string{"**/*"}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	result := &DiscoverResult{SkipReasons: map[string]int{}}
	seen := map[string]bool{}

	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		matched := false
		for _, pattern := range includeGlobs {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				matched = true
				break
			}
		}
		if !matched {
			result.SkipReasons["not_included"]++
			return nil
		}
		for _, pattern := range excludeGlobs {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				result.SkipReasons["excluded"]++
				return nil
			}
		}
		if seen[path] {
			result.SkipReasons["duplicate"]++
			return nil
		}
		seen[path] = true
		result.Paths = append(result.Paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk root: %w", err)
	}
	return result, nil
}
