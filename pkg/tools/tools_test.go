package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traceai/engine/pkg/graph"
	"github.com/traceai/engine/pkg/ir"
	"github.com/traceai/engine/pkg/vectorindex"
)

func buildServiceFixture(t *testing.T) *Service {
	t.Helper()
	g := graph.New()
	docID := ir.DocumentID("pkg.dtsx", "h1")
	custID := ir.DataEntityID("", "Customer")
	extractID := ir.ComponentID(docID, "ExtractCustomers")
	mergeID := ir.ComponentID(docID, "MergeToWarehouse")

	pd := &ir.ParsedDocument{
		Document: ir.Document{ID: docID, Name: "pkg", Kind: ir.KindSSIS, SourcePath: "pkg.dtsx", ContentHash: "h1"},
		Components: []ir.Component{
			{ID: extractID, DocumentID: docID, Name: "ExtractCustomers"},
			{ID: mergeID, DocumentID: docID, Name: "MergeToWarehouse"},
		},
		DataEntities: []ir.DataEntity{{ID: custID, Name: "Customer", EntityType: ir.EntityTable}},
		Dependencies: []ir.Dependency{
			{FromID: extractID, ToID: custID, Kind: ir.DepReadsFrom},
			{FromID: mergeID, ToID: custID, Kind: ir.DepWritesTo},
			{FromID: extractID, ToID: mergeID, Kind: ir.DepPrecedes},
		},
	}
	_, err := g.AddDocument(context.Background(), pd)
	require.NoError(t, err)

	idx := vectorindex.NewMemoryIndex()
	embedder := vectorindex.NewHashEmbedder(16)
	for _, comp := range pd.Components {
		vec, embErr := embedder.Embed(context.Background(), comp.Name)
		require.NoError(t, embErr)
		require.NoError(t, idx.Upsert(context.Background(), vectorindex.Entry{ID: comp.ID, Text: comp.Name, Vector: vec}))
	}

	return New(g.Snapshot(), idx, embedder)
}

func TestGraphQuery(t *testing.T) {
	svc := buildServiceFixture(t)
	result, err := svc.GraphQuery(GraphQueryArgs{NameSubstring: "Customer"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Nodes)
}

func TestGraphQuery_InvalidLimit(t *testing.T) {
	svc := buildServiceFixture(t)
	_, err := svc.GraphQuery(GraphQueryArgs{Limit: -1})
	require.Error(t, err)
}

func TestTraceLineage(t *testing.T) {
	svc := buildServiceFixture(t)
	result, err := svc.TraceLineage(context.Background(), TraceLineageArgs{EntityName: "Customer", Direction: "both", MaxDepth: 5})
	require.NoError(t, err)
	require.NotEmpty(t, result.Upstream)
}

func TestTraceLineage_InvalidDirection(t *testing.T) {
	svc := buildServiceFixture(t)
	_, err := svc.TraceLineage(context.Background(), TraceLineageArgs{EntityName: "Customer", Direction: "sideways", MaxDepth: 5})
	require.Error(t, err)
}

func TestAnalyzeImpact(t *testing.T) {
	svc := buildServiceFixture(t)
	result, err := svc.AnalyzeImpact("Customer")
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
}

func TestFindDependencies(t *testing.T) {
	svc := buildServiceFixture(t)
	docID := ir.DocumentID("pkg.dtsx", "h1")
	extractID := ir.ComponentID(docID, "ExtractCustomers")
	result, err := svc.FindDependencies(context.Background(), FindDependenciesArgs{ComponentID: extractID, Direction: "downstream", MaxDepth: 5})
	require.NoError(t, err)
	require.Len(t, result.Nodes, 1)
	require.Equal(t, "MergeToWarehouse", result.Nodes[0].Name)
}

func TestSemanticSearch(t *testing.T) {
	svc := buildServiceFixture(t)
	result, err := svc.SemanticSearch(context.Background(), SemanticSearchArgs{Query: "ExtractCustomers", TopK: 1})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
}

func TestGraphStats(t *testing.T) {
	svc := buildServiceFixture(t)
	stats := svc.GraphStats()
	require.Equal(t, 4, stats.Nodes)
}
