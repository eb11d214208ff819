package vectorindex

import (
	"context"
	"sort"
	"sync"
)

// Entry is one embedded unit: a Component, DataEntity, or DataSource
// identified by its graph node id, together with the text it was embedded
// from (returned alongside search hits so callers never need a second
// lookup to explain a match).
type Entry struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata map[string]string
}

// Hit is one search result, node id plus similarity score in [-1, 1].
type Hit struct {
	ID         string
	Text       string
	Similarity float64
	Metadata   map[string]string
}

// matchesFilter reports whether metadata satisfies filter's equality
// predicate: every key in filter must be present in metadata with an equal
// value. A nil or empty filter matches everything.
func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// Index stores embedded entries and answers nearest-neighbor queries.
// Implementations must be safe for concurrent Search calls racing a single
// writer's Upsert/Delete, mirroring the graph's single-writer model.
type Index interface {
	Upsert(ctx context.Context, entries ...Entry) error
	Delete(ctx context.Context, ids ...string) error
	// Search returns the topK entries most similar to query, restricted to
	// entries whose metadata satisfies filter's equality predicate. A nil
	// or empty filter matches every entry.
	Search(ctx context.Context, query []float32, topK int, filter map[string]string) ([]Hit, error)
	Len() int
}

// MemoryIndex is a brute-force, in-memory Index. Fine for the corpus sizes
// an ETL lineage graph actually reaches; a full ANN index would be
// premature for the traversal-bound workloads this engine serves.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryIndex returns an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]Entry)}
}

func (idx *MemoryIndex) Upsert(ctx context.Context, entries ...Entry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, e := range entries {
		idx.entries[e.ID] = e
	}
	return nil
}

func (idx *MemoryIndex) Delete(ctx context.Context, ids ...string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, id := range ids {
		delete(idx.entries, id)
	}
	return nil
}

func (idx *MemoryIndex) Search(ctx context.Context, query []float32, topK int, filter map[string]string) ([]Hit, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]Hit, 0, len(idx.entries))
	for _, e := range idx.entries {
		if !matchesFilter(e.Metadata, filter) {
			continue
		}
		hits = append(hits, Hit{ID: e.ID, Text: e.Text, Similarity: CosineSimilarity(query, e.Vector), Metadata: e.Metadata})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ID < hits[j].ID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}
