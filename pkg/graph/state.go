package graph

import "github.com/traceai/engine/pkg/ir"

// state is the immutable value swapped atomically on every commit. A
// reader holding a *state pointer sees a fully consistent snapshot
// forever, regardless of later commits, which is exactly the
// "query never sees a partially applied commit" contract of spec §5.
type state struct {
	nodes          map[string]Node
	outEdges       map[string][]Edge
	inEdges        map[string][]Edge
	documentHash   map[string]string   // document id -> content hash
	documentOwned  map[string][]string // document id -> exclusively-owned node ids (components, parameters)
	documentByPath map[string]string   // normalized source path -> current document id
	deferred       []ir.DeferredReference
}

func newState() *state {
	return &state{
		nodes:          map[string]Node{},
		outEdges:       map[string][]Edge{},
		inEdges:        map[string][]Edge{},
		documentHash:   map[string]string{},
		documentOwned:  map[string][]string{},
		documentByPath: map[string]string{},
	}
}

// clone makes a shallow-ish copy suitable for copy-on-write mutation: the
// top-level maps are copied so the original (still referenced by
// existing snapshots) is untouched, but Node/Edge values themselves are
// immutable once constructed so they can be shared between old and new
// states.
func (s *state) clone() *state {
	ns := &state{
		nodes:          make(map[string]Node, len(s.nodes)),
		outEdges:       make(map[string][]Edge, len(s.outEdges)),
		inEdges:        make(map[string][]Edge, len(s.inEdges)),
		documentHash:   make(map[string]string, len(s.documentHash)),
		documentOwned:  make(map[string][]string, len(s.documentOwned)),
		documentByPath: make(map[string]string, len(s.documentByPath)),
		deferred:       append([]ir.DeferredReference(nil), s.deferred...),
	}
	for k, v := range s.nodes {
		ns.nodes[k] = v
	}
	for k, v := range s.outEdges {
		ns.outEdges[k] = append([]Edge(nil), v...)
	}
	for k, v := range s.inEdges {
		ns.inEdges[k] = append([]Edge(nil), v...)
	}
	for k, v := range s.documentHash {
		ns.documentHash[k] = v
	}
	for k, v := range s.documentOwned {
		ns.documentOwned[k] = append([]string(nil), v...)
	}
	for k, v := range s.documentByPath {
		ns.documentByPath[k] = v
	}
	return ns
}

func (s *state) addEdge(e Edge) {
	s.outEdges[e.From] = append(s.outEdges[e.From], e)
	s.inEdges[e.To] = append(s.inEdges[e.To], e)
}

func (s *state) stats() Stats {
	st := Stats{
		Nodes:          len(s.nodes),
		ByKind:         map[NodeKind]int{},
		ByDocumentKind: map[ir.DocumentKind]int{},
	}
	edgeCount := 0
	for _, es := range s.outEdges {
		edgeCount += len(es)
	}
	st.Edges = edgeCount
	for _, n := range s.nodes {
		st.ByKind[n.Kind]++
		if n.Kind == NodeDocument {
			st.ByDocumentKind[n.DocumentKind]++
		}
	}
	return st
}
