package query

import (
	"sort"

	"github.com/traceai/engine/pkg/graph"
	"github.com/traceai/engine/pkg/ir"
)

// ImpactResult is the structured return value of analyze_impact (spec
// §4.5/§4.8).
type ImpactResult struct {
	Readers []graph.Node
	Writers []graph.Node
	Total   int
}

// AnalyzeImpact performs the one-hop reverse-index lookup spec §4.5
// describes: O(degree) via the maintained incoming-edge index, no
// traversal beyond one hop.
func (e *Engine) AnalyzeImpact(entityName string) (*ImpactResult, error) {
	starts := e.nodesByNormalizedName(entityName)
	if len(starts) == 0 {
		return nil, e.unknownEntityError(entityName)
	}

	readerSet := map[string]graph.Node{}
	writerSet := map[string]graph.Node{}
	for _, ent := range starts {
		for _, edge := range e.snap.InEdges(ent.ID, ir.DepReadsFrom) {
			if n, ok := e.snap.Node(edge.From); ok {
				readerSet[n.ID] = n
			}
		}
		for _, edge := range e.snap.InEdges(ent.ID, ir.DepWritesTo) {
			if n, ok := e.snap.Node(edge.From); ok {
				writerSet[n.ID] = n
			}
		}
	}

	readers := sortedValues(readerSet)
	writers := sortedValues(writerSet)

	total := map[string]bool{}
	for _, n := range readers {
		total[n.ID] = true
	}
	for _, n := range writers {
		total[n.ID] = true
	}

	return &ImpactResult{Readers: readers, Writers: writers, Total: len(total)}, nil
}

func sortedValues(m map[string]graph.Node) []graph.Node {
	out := make([]graph.Node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
