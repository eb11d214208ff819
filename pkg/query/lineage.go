package query

import (
	"context"
	"sort"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/graph"
	"github.com/traceai/engine/pkg/ir"
)

// NodeAtDepth pairs a node with the BFS depth at which it was reached.
type NodeAtDepth struct {
	Node  graph.Node
	Depth int
}

// LineageResult is the structured return value of trace_lineage (spec
// §4.8): never prose, always typed.
type LineageResult struct {
	Upstream   []NodeAtDepth
	Downstream []NodeAtDepth
	Truncated  bool
}

// TraceLineage implements spec §4.5's trace_lineage. Direction is one of
// "upstream", "downstream", "both". max_depth = 0 returns only the
// starting node(s), per the boundary behavior of spec §8.
func (e *Engine) TraceLineage(ctx context.Context, entityName string, direction string, maxDepth int) (*LineageResult, error) {
	starts := e.nodesByNormalizedName(entityName)
	if len(starts) == 0 {
		return nil, e.unknownEntityError(entityName)
	}

	result := &LineageResult{}
	var err error
	if direction == "upstream" || direction == "both" {
		result.Upstream, result.Truncated, err = e.bfsLineage(ctx, starts, maxDepth, ir.DepWritesTo, ir.DepReadsFrom, true)
		if err != nil {
			return nil, err
		}
	}
	if direction == "downstream" || direction == "both" {
		var truncatedDown bool
		result.Downstream, truncatedDown, err = e.bfsLineage(ctx, starts, maxDepth, ir.DepReadsFrom, ir.DepWritesTo, false)
		if err != nil {
			return nil, err
		}
		result.Truncated = result.Truncated || truncatedDown
	}
	return result, nil
}

// bfsLineage walks alternating entity -> component -> entity layers.
// entityToComponentKind selects which edge kind, read as incoming to the
// current entity, identifies the component at the next layer (WRITES_TO
// for upstream producers, READS_FROM for downstream readers);
// componentToEntityKind selects the edge kind (outgoing from that
// component) that reaches the next entity layer. Visited nodes are never
// revisited, which makes the walk cycle-safe regardless of cycles
// elsewhere in the graph (spec §8 property 4).
func (e *Engine) bfsLineage(ctx context.Context, starts []graph.Node, maxDepth int, entityToComponentKind, componentToEntityKind ir.DependencyKind, viaIncoming bool) ([]NodeAtDepth, bool, error) {
	visited := map[string]bool{}
	var out []NodeAtDepth
	type item struct {
		node  graph.Node
		depth int
	}
	var queue []item
	for _, s := range starts {
		if !visited[s.ID] {
			visited[s.ID] = true
			queue = append(queue, item{s, 0})
			out = append(out, NodeAtDepth{s, 0})
		}
	}

	explored := 0
	truncated := false

	for len(queue) > 0 {
		if explored%100 == 0 {
			select {
			case <-ctx.Done():
				return out, truncated, apperrors.Wrap(apperrors.Cancelled, "lineage trace cancelled", ctx.Err())
			default:
			}
		}
		cur := queue[0]
		queue = queue[1:]
		explored++
		if explored > MaxNodesExplored {
			truncated = true
			break
		}
		if cur.depth >= maxDepth {
			continue
		}

		var componentEdges []graph.Edge
		if cur.node.Kind == graph.NodeDataEntity || cur.node.Kind == graph.NodeDataSource {
			componentEdges = e.snap.InEdges(cur.node.ID, entityToComponentKind)
		} else {
			continue
		}
		sortEdgesByFrom(componentEdges)
		for _, ce := range componentEdges {
			compNode, ok := e.snap.Node(ce.From)
			if !ok || visited[compNode.ID] {
				continue
			}
			visited[compNode.ID] = true
			out = append(out, NodeAtDepth{compNode, cur.depth + 1})
			queue = append(queue, item{compNode, cur.depth + 1})

			if cur.depth+1 >= maxDepth {
				continue
			}
			entityEdges := e.snap.OutEdges(compNode.ID, componentToEntityKind)
			sortEdgesByTo(entityEdges)
			for _, ee := range entityEdges {
				nextEnt, ok := e.snap.Node(ee.To)
				if !ok || visited[nextEnt.ID] {
					continue
				}
				visited[nextEnt.ID] = true
				out = append(out, NodeAtDepth{nextEnt, cur.depth + 2})
				queue = append(queue, item{nextEnt, cur.depth + 2})
			}
		}
	}

	return out, truncated, nil
}

func sortEdgesByFrom(edges []graph.Edge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].From < edges[j].From })
}

func sortEdgesByTo(edges []graph.Edge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
}
