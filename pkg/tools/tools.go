package tools

import (
	"context"

	"github.com/traceai/engine/internal/contract"
	"github.com/traceai/engine/pkg/graph"
	"github.com/traceai/engine/pkg/query"
	"github.com/traceai/engine/pkg/vectorindex"
)

// Service binds a query engine and a vector index to one consistent
// snapshot, exposing the six operations spec §4.8 names.
type Service struct {
	engine   *query.Engine
	index    vectorindex.Index
	embedder vectorindex.Embedder
}

// New builds a Service over a snapshot's query engine and the vector index
// to search against.
func New(snap *graph.Snapshot, index vectorindex.Index, embedder vectorindex.Embedder) *Service {
	return &Service{engine: query.New(snap), index: index, embedder: embedder}
}

// GraphQueryArgs parameterizes graph_query.
type GraphQueryArgs struct {
	Kind          string
	NameSubstring string
	Limit         int
}

// GraphQueryResult is graph_query's typed return value.
type GraphQueryResult struct {
	Nodes []graph.Node `json:"nodes"`
}

// GraphQuery performs a structural node lookup.
func (s *Service) GraphQuery(args GraphQueryArgs) (*GraphQueryResult, error) {
	if err := contract.ValidateLimit(args.Limit); err != nil {
		return nil, err
	}
	nodes := s.engine.FindNodes(query.FindNodesArgs{
		Kind:          graph.NodeKind(args.Kind),
		NameSubstring: args.NameSubstring,
		Limit:         args.Limit,
	})
	return &GraphQueryResult{Nodes: nodes}, nil
}

// TraceLineageArgs parameterizes trace_lineage.
type TraceLineageArgs struct {
	EntityName string
	Direction  string
	MaxDepth   int
}

// TraceLineage traces upstream/downstream lineage from entity_name.
func (s *Service) TraceLineage(ctx context.Context, args TraceLineageArgs) (*query.LineageResult, error) {
	if err := contract.ValidateNonEmpty("entity_name", args.EntityName); err != nil {
		return nil, err
	}
	dir, err := contract.ValidateDirection(args.Direction)
	if err != nil {
		return nil, err
	}
	if err := contract.ValidateMaxDepth(args.MaxDepth); err != nil {
		return nil, err
	}
	return s.engine.TraceLineage(ctx, args.EntityName, string(dir), args.MaxDepth)
}

// AnalyzeImpact returns the one-hop readers/writers of entity_name.
func (s *Service) AnalyzeImpact(entityName string) (*query.ImpactResult, error) {
	if err := contract.ValidateNonEmpty("entity_name", entityName); err != nil {
		return nil, err
	}
	return s.engine.AnalyzeImpact(entityName)
}

// FindDependenciesArgs parameterizes find_dependencies.
type FindDependenciesArgs struct {
	ComponentID string
	Direction   string
	MaxDepth    int
}

// FindDependenciesResult is find_dependencies' typed return value.
type FindDependenciesResult struct {
	Nodes []graph.Node `json:"nodes"`
}

// FindDependencies walks the PRECEDES/CALLS closure from component_id.
func (s *Service) FindDependencies(ctx context.Context, args FindDependenciesArgs) (*FindDependenciesResult, error) {
	if err := contract.ValidateNonEmpty("component_id", args.ComponentID); err != nil {
		return nil, err
	}
	dir, err := contract.ValidateDirection(args.Direction)
	if err != nil {
		return nil, err
	}
	if err := contract.ValidateMaxDepth(args.MaxDepth); err != nil {
		return nil, err
	}
	nodes, err := s.engine.ComponentDependencies(ctx, args.ComponentID, string(dir), args.MaxDepth)
	if err != nil {
		return nil, err
	}
	return &FindDependenciesResult{Nodes: nodes}, nil
}

// SemanticSearchArgs parameterizes semantic_search.
type SemanticSearchArgs struct {
	Query  string
	TopK   int
	Filter map[string]string
}

// SemanticSearchResult is semantic_search's typed return value.
type SemanticSearchResult struct {
	Hits []vectorindex.Hit `json:"hits"`
}

// SemanticSearch embeds query text and searches the vector index.
func (s *Service) SemanticSearch(ctx context.Context, args SemanticSearchArgs) (*SemanticSearchResult, error) {
	if err := contract.ValidateNonEmpty("query", args.Query); err != nil {
		return nil, err
	}
	if err := contract.ValidateLimit(args.TopK); err != nil {
		return nil, err
	}
	topK := args.TopK
	if topK == 0 {
		topK = 10
	}
	vec, err := s.embedder.Embed(ctx, args.Query)
	if err != nil {
		return nil, err
	}
	hits, err := s.index.Search(ctx, vec, topK, args.Filter)
	if err != nil {
		return nil, err
	}
	return &SemanticSearchResult{Hits: hits}, nil
}

// GraphStats returns the O(1) node/edge summary.
func (s *Service) GraphStats() graph.Stats {
	return s.engine.Stats()
}
