package graph

import "github.com/traceai/engine/pkg/ir"

// NodeKind is the closed set of node kinds the graph stores. Document,
// Component, DataSource, DataEntity and Parameter from spec §3 each map
// to one NodeKind.
type NodeKind string

const (
	NodeDocument   NodeKind = "document"
	NodeComponent  NodeKind = "component"
	NodeDataSource NodeKind = "data_source"
	NodeDataEntity NodeKind = "data_entity"
	NodeParameter  NodeKind = "parameter"
)

// Node is one graph vertex. Attrs carries format-specific extras (the
// "single open properties map" spec §9 prescribes for typed records).
type Node struct {
	ID           string
	Kind         NodeKind
	Name         string
	DocumentID   string // owning Document, empty for interned shared nodes
	DocumentKind ir.DocumentKind
	Attrs        map[string]string
	RefCount     int // > 1 for interned DataSource/DataEntity nodes shared across documents
}

// Edge is one graph edge.
type Edge struct {
	From       string
	To         string
	Kind       ir.DependencyKind
	Properties map[string]string
}

// Stats is the O(1) summary spec §4.5's stats() operation returns.
type Stats struct {
	Nodes          int
	Edges          int
	ByKind         map[NodeKind]int
	ByDocumentKind map[ir.DocumentKind]int
}

// CommitReport is returned by AddDocument/RemoveDocument, per spec §4.4.
type CommitReport struct {
	DocumentID   string
	NodesAdded   int
	NodesUpdated int
	NodesRemoved int
	EdgesAdded   int
	EdgesRemoved int
	Noop         bool // true when (document_id, content_hash) already matched
}

// UnresolvedRef describes a deferred reference still pending after
// resolve_deferred_references has run.
type UnresolvedRef struct {
	FromID string
	ToName string
	Kind   ir.DependencyKind
}
