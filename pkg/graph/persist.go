package graph

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"time"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/ir"
)

// SchemaVersion is bumped whenever the on-disk snapshot layout changes.
// Forward-compatible readers accept older versions, per spec §6.
const SchemaVersion = 1

type snapshotHeader struct {
	SchemaVersion  int               `json:"schema_version"`
	CreatedAt      time.Time         `json:"created_at"`
	DocumentHashes map[string]string `json:"document_hashes"`
}

type snapshotFile struct {
	Header   snapshotHeader           `json:"header"`
	Nodes    []Node                   `json:"nodes"`
	Edges    []Edge                   `json:"edges"`
	Deferred []ir.DeferredReference   `json:"deferred"`
}

// Save writes a versioned gzip+JSON dump of the graph to path, per
// spec §6's "graph snapshot" artifact.
func (g *Graph) Save(path string) error {
	s := g.current.Load()

	sf := snapshotFile{
		Header: snapshotHeader{
			SchemaVersion:  SchemaVersion,
			CreatedAt:      time.Now(),
			DocumentHashes: s.documentHash,
		},
		Deferred: s.deferred,
	}
	for _, n := range s.nodes {
		sf.Nodes = append(sf.Nodes, n)
	}
	for _, edges := range s.outEdges {
		sf.Edges = append(sf.Edges, edges...)
	}

	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to create snapshot file", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	enc := json.NewEncoder(gz)
	if err := enc.Encode(sf); err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to encode snapshot", err)
	}
	return nil
}

// Load returns a new Graph holding the snapshot at path.
// Accepts any schema_version <= SchemaVersion.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to open snapshot file", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to open gzip snapshot", err)
	}
	defer gz.Close()

	var sf snapshotFile
	if err := json.NewDecoder(gz).Decode(&sf); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to decode snapshot", err)
	}
	if sf.Header.SchemaVersion > SchemaVersion {
		return nil, apperrors.New(apperrors.Internal, "snapshot schema_version is newer than this build supports")
	}

	s := newState()
	s.documentHash = sf.Header.DocumentHashes
	s.deferred = sf.Deferred
	for _, n := range sf.Nodes {
		s.nodes[n.ID] = n
		if n.Kind == NodeDocument {
			s.documentByPath[ir.NormalizePath(n.Attrs["source_path"])] = n.ID
		}
	}
	for _, e := range sf.Edges {
		s.addEdge(e)
	}
	// documentOwned is not stored in the snapshot; rebuild it here from
	// each node's DocumentID so a later AddDocument/RemoveDocument can
	// remove a loaded document's owned nodes.
	for docID := range s.documentHash {
		var owned []string
		for id, n := range s.nodes {
			if n.DocumentID == docID && n.Kind != NodeDocument {
				owned = append(owned, id)
			}
		}
		s.documentOwned[docID] = owned
	}

	g := &Graph{}
	g.current.Store(s)
	return g, nil
}
