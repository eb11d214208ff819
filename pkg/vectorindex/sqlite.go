package vectorindex

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/traceai/engine/pkg/storage"
)

// SQLiteIndex is an Index backed by the embeddings table of a
// storage.EmbeddedBackend, giving search results persistence across runs
// without a second embedded database. Search is still brute-force cosine
// similarity over all rows: the corpus sizes this engine targets never
// approach the scale where an ANN index would pay for its complexity.
type SQLiteIndex struct {
	backend *storage.EmbeddedBackend
}

// NewSQLiteIndex wraps an already-open backend. Callers must have called
// backend.EnsureSchema first.
func NewSQLiteIndex(backend *storage.EmbeddedBackend) *SQLiteIndex {
	return &SQLiteIndex{backend: backend}
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

func encodeMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func decodeMetadata(buf []byte) map[string]string {
	if len(buf) == 0 {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil
	}
	return m
}

func (idx *SQLiteIndex) Upsert(ctx context.Context, entries ...Entry) error {
	for _, e := range entries {
		metaBytes, err := encodeMetadata(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", e.ID, err)
		}
		err = idx.backend.Execute(ctx,
			`INSERT INTO embeddings (node_id, text, vector, metadata) VALUES (?, ?, ?, ?)
			 ON CONFLICT(node_id) DO UPDATE SET text = excluded.text, vector = excluded.vector, metadata = excluded.metadata`,
			e.ID, e.Text, encodeVector(e.Vector), metaBytes)
		if err != nil {
			return fmt.Errorf("upsert embedding %s: %w", e.ID, err)
		}
	}
	return nil
}

func (idx *SQLiteIndex) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := idx.backend.Execute(ctx, `DELETE FROM embeddings WHERE node_id = ?`, id); err != nil {
			return fmt.Errorf("delete embedding %s: %w", id, err)
		}
	}
	return nil
}

func (idx *SQLiteIndex) Search(ctx context.Context, query []float32, topK int, filter map[string]string) ([]Hit, error) {
	result, err := idx.backend.Query(ctx, `SELECT node_id, text, vector, metadata FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(result.Rows))
	for _, row := range result.Rows {
		id, _ := row[0].(string)
		text, _ := row[1].(string)
		vecBytes, ok := row[2].([]byte)
		if !ok {
			continue
		}
		var metaBytes []byte
		if len(row) > 3 {
			metaBytes, _ = row[3].([]byte)
		}
		metadata := decodeMetadata(metaBytes)
		if !matchesFilter(metadata, filter) {
			continue
		}
		hits = append(hits, Hit{ID: id, Text: text, Similarity: CosineSimilarity(query, decodeVector(vecBytes)), Metadata: metadata})
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

func (idx *SQLiteIndex) Len() int {
	result, err := idx.backend.Query(context.Background(), `SELECT COUNT(*) FROM embeddings`)
	if err != nil || len(result.Rows) == 0 {
		return 0
	}
	switch v := result.Rows[0][0].(type) {
	case int64:
		return int(v)
	default:
		return 0
	}
}
