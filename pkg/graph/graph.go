package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/ir"
)

// Graph is the single-writer, many-reader typed multigraph of spec §4.4.
// Commits serialize through mu; readers call Snapshot() and get an
// atomic.Pointer read with no locking at all.
type Graph struct {
	mu      sync.Mutex // serializes writers only; readers never take this lock
	current atomic.Pointer[state]
}

// New returns an empty Graph.
func New() *Graph {
	g := &Graph{}
	g.current.Store(newState())
	return g
}

// Snapshot is an immutable, consistent view of the graph at one point in
// time. Safe for concurrent use by many readers while a commit proceeds
// in parallel.
type Snapshot struct {
	s *state
}

// Snapshot takes a read-only snapshot of the current graph state.
func (g *Graph) Snapshot() *Snapshot {
	return &Snapshot{s: g.current.Load()}
}

// Stats returns the O(1) summary spec §4.5 requires.
func (snap *Snapshot) Stats() Stats { return snap.s.stats() }

// Node looks up a node by id.
func (snap *Snapshot) Node(id string) (Node, bool) {
	n, ok := snap.s.nodes[id]
	return n, ok
}

// AllNodes returns every node, in deterministic (kind, name, id) order,
// per spec §4.5's tie-breaking rule.
func (snap *Snapshot) AllNodes() []Node {
	out := make([]Node, 0, len(snap.s.nodes))
	for _, n := range snap.s.nodes {
		out = append(out, n)
	}
	sortNodes(out)
	return out
}

func sortNodes(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Kind != nodes[j].Kind {
			return nodes[i].Kind < nodes[j].Kind
		}
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// OutEdges returns edges leaving id, optionally filtered to kinds (no
// filter returns all).
func (snap *Snapshot) OutEdges(id string, kinds ...ir.DependencyKind) []Edge {
	return filterEdges(snap.s.outEdges[id], kinds)
}

// InEdges returns edges entering id, optionally filtered to kinds.
func (snap *Snapshot) InEdges(id string, kinds ...ir.DependencyKind) []Edge {
	return filterEdges(snap.s.inEdges[id], kinds)
}

func filterEdges(edges []Edge, kinds []ir.DependencyKind) []Edge {
	if len(kinds) == 0 {
		return edges
	}
	allowed := make(map[ir.DependencyKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if allowed[e.Kind] {
			out = append(out, e)
		}
	}
	return out
}

// Unresolved returns deferred references still pending resolution.
func (snap *Snapshot) Unresolved() []ir.DeferredReference {
	return append([]ir.DeferredReference(nil), snap.s.deferred...)
}

// AddDocument commits one ParsedDocument atomically, per the algorithm of
// spec §4.4.
func (g *Graph) AddDocument(ctx context.Context, pd *ir.ParsedDocument) (*CommitReport, error) {
	select {
	case <-ctx.Done():
		return nil, apperrors.Wrap(apperrors.Cancelled, "commit cancelled", ctx.Err())
	default:
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	old := g.current.Load()
	path := ir.NormalizePath(pd.Document.SourcePath)

	report := &CommitReport{DocumentID: pd.Document.ID}

	if existingHash, ok := old.documentHash[pd.Document.ID]; ok && existingHash == pd.Document.ContentHash {
		report.Noop = true
		return report, nil
	}

	next := old.clone()

	// Step 3: if a document already exists at this path with a different
	// hash, remove its owned nodes/edges before inserting the new parse.
	if prevID, ok := next.documentByPath[path]; ok && prevID != pd.Document.ID {
		removed := removeDocumentLocked(next, prevID)
		report.NodesRemoved += removed.nodes
		report.EdgesRemoved += removed.edges
	}

	// Step 4: insert the new Document node.
	docAttrs := map[string]string{"source_path": pd.Document.SourcePath}
	for k, v := range pd.Document.Custom {
		docAttrs[k] = v
	}
	next.nodes[pd.Document.ID] = Node{
		ID:           pd.Document.ID,
		Kind:         NodeDocument,
		Name:         pd.Document.Name,
		DocumentID:   pd.Document.ID,
		DocumentKind: pd.Document.Kind,
		Attrs:        docAttrs,
	}
	next.documentHash[pd.Document.ID] = pd.Document.ContentHash
	next.documentByPath[path] = pd.Document.ID
	report.NodesAdded++
	var owned []string

	// upsertShared interns a DataSource/DataEntity node across documents.
	// Attrs from every contributing document are merged (first writer
	// wins per key) rather than discarded, so an alternate name one
	// parser attaches (e.g. a COBOL SELECT alias) survives even when
	// another parser's document commits the node first.
	upsertShared := func(id string, n Node) {
		if existing, ok := next.nodes[id]; ok {
			existing.RefCount++
			merged := make(map[string]string, len(existing.Attrs)+len(n.Attrs))
			for k, v := range existing.Attrs {
				merged[k] = v
			}
			for k, v := range n.Attrs {
				if _, ok := merged[k]; !ok {
					merged[k] = v
				}
			}
			existing.Attrs = merged
			next.nodes[id] = existing
			report.NodesUpdated++
		} else {
			n.RefCount = 1
			next.nodes[id] = n
			report.NodesAdded++
		}
	}

	for _, c := range pd.Components {
		next.nodes[c.ID] = Node{
			ID: c.ID, Kind: NodeComponent, Name: c.Name, DocumentID: pd.Document.ID,
			Attrs: map[string]string{"component_type": c.ComponentType, "description": c.Description},
		}
		owned = append(owned, c.ID)
		report.NodesAdded++
	}
	for _, param := range pd.Parameters {
		next.nodes[param.ID] = Node{
			ID: param.ID, Kind: NodeParameter, Name: param.Name, DocumentID: pd.Document.ID,
			Attrs: map[string]string{"data_type": param.DataType, "value": param.Value},
		}
		owned = append(owned, param.ID)
		report.NodesAdded++
	}
	for _, ds := range pd.DataSources {
		upsertShared(ds.ID, Node{ID: ds.ID, Kind: NodeDataSource, Name: ds.Name, Attrs: ds.Properties})
	}
	for _, ent := range pd.DataEntities {
		upsertShared(ent.ID, Node{ID: ent.ID, Kind: NodeDataEntity, Name: ent.Name, Attrs: ent.Properties})
	}
	next.documentOwned[pd.Document.ID] = owned

	for _, dep := range pd.Dependencies {
		if strings.HasPrefix(dep.ToID, "deferred:program:") {
			programName := strings.TrimPrefix(dep.ToID, "deferred:program:")
			next.deferred = append(next.deferred, ir.DeferredReference{
				FromID: dep.FromID,
				ToName: programName,
				Kind:   dep.Kind,
				Origin: pd.Document.ID,
			})
			continue
		}
		next.addEdge(Edge{From: dep.FromID, To: dep.ToID, Kind: dep.Kind, Properties: dep.Properties})
		report.EdgesAdded++
	}

	resolveDeferredLocked(next)

	g.current.Store(next)
	return report, nil
}

type removedCounts struct{ nodes, edges int }

// removeDocumentLocked removes a Document's exclusively-owned nodes and
// all edges touching them, decrementing refcounts on shared
// DataSource/DataEntity nodes and deleting them once the refcount
// reaches zero. Must be called with g.mu held, against a state already
// cloned for this commit.
func removeDocumentLocked(s *state, documentID string) removedCounts {
	var rc removedCounts
	owned := s.documentOwned[documentID]
	ownedSet := make(map[string]bool, len(owned)+1)
	ownedSet[documentID] = true
	for _, id := range owned {
		ownedSet[id] = true
	}

	touchesOwned := func(e Edge) bool { return ownedSet[e.From] || ownedSet[e.To] }

	// Rebuild edge lists dropping anything that touches an owned node,
	// decrementing refcounts on the far endpoint when it is a shared
	// DataSource/DataEntity.
	for nodeID, edges := range s.outEdges {
		kept := edges[:0:0]
		for _, e := range edges {
			if touchesOwned(e) {
				rc.edges++
				decrementIfShared(s, e.To)
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(s.outEdges, nodeID)
		} else {
			s.outEdges[nodeID] = kept
		}
	}
	for nodeID, edges := range s.inEdges {
		kept := edges[:0:0]
		for _, e := range edges {
			if touchesOwned(e) {
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(s.inEdges, nodeID)
		} else {
			s.inEdges[nodeID] = kept
		}
	}

	for id := range ownedSet {
		delete(s.nodes, id)
		rc.nodes++
	}
	delete(s.documentOwned, documentID)
	delete(s.documentHash, documentID)
	for path, id := range s.documentByPath {
		if id == documentID {
			delete(s.documentByPath, path)
		}
	}
	// Drop deferred references originating from the removed document.
	var kept []ir.DeferredReference
	for _, d := range s.deferred {
		if d.Origin != documentID {
			kept = append(kept, d)
		}
	}
	s.deferred = kept
	return rc
}

func decrementIfShared(s *state, id string) {
	n, ok := s.nodes[id]
	if !ok || (n.Kind != NodeDataSource && n.Kind != NodeDataEntity) {
		return
	}
	n.RefCount--
	if n.RefCount <= 0 {
		delete(s.nodes, id)
		return
	}
	s.nodes[id] = n
}

// RemoveDocument removes documentID and its exclusively-owned nodes.
// Returns false if the document does not exist.
func (g *Graph) RemoveDocument(ctx context.Context, documentID string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, apperrors.Wrap(apperrors.Cancelled, "remove cancelled", ctx.Err())
	default:
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	old := g.current.Load()
	if _, ok := old.nodes[documentID]; !ok {
		return false, nil
	}
	next := old.clone()
	removeDocumentLocked(next, documentID)
	g.current.Store(next)
	return true, nil
}

// ResolveDeferredReferences resolves any pending deferred references by
// looking up existing Document nodes whose Name matches, preferring the
// Document sharing the longest source-path prefix with the reference's
// origin (the per-directory namespace spec §9 recommends). Returns
// whatever remains unresolved afterward.
func (g *Graph) ResolveDeferredReferences(ctx context.Context) ([]UnresolvedRef, error) {
	select {
	case <-ctx.Done():
		return nil, apperrors.Wrap(apperrors.Cancelled, "resolve cancelled", ctx.Err())
	default:
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	old := g.current.Load()
	next := old.clone()
	resolveDeferredLocked(next)
	g.current.Store(next)

	var unresolved []UnresolvedRef
	for _, d := range next.deferred {
		unresolved = append(unresolved, UnresolvedRef{FromID: d.FromID, ToName: d.ToName, Kind: d.Kind})
	}
	return unresolved, nil
}

// resolveDeferredLocked attempts to resolve every pending deferred
// reference against the Document nodes currently present in s, adding
// CALLS edges for every one it can and leaving the rest in s.deferred.
func resolveDeferredLocked(s *state) {
	var remaining []ir.DeferredReference
	for _, d := range s.deferred {
		target, ok := bestMatchingDocument(s, d)
		if !ok {
			remaining = append(remaining, d)
			continue
		}
		s.addEdge(Edge{From: d.FromID, To: target, Kind: d.Kind, Properties: map[string]string{"resolved": "true"}})
	}
	s.deferred = remaining
}

func bestMatchingDocument(s *state, d ir.DeferredReference) (string, bool) {
	originPath := ""
	if origin, ok := s.nodes[d.Origin]; ok {
		originPath = origin.Attrs["source_path"]
	}
	var best string
	bestScore := -1
	for id, n := range s.nodes {
		if n.Kind != NodeDocument {
			continue
		}
		if !strings.EqualFold(n.Name, d.ToName) {
			continue
		}
		score := commonPrefixLen(originPath, n.Attrs["source_path"])
		if score > bestScore {
			bestScore = score
			best = id
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
