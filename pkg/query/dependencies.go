package query

import (
	"context"
	"sort"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/graph"
	"github.com/traceai/engine/pkg/ir"
)

// ComponentDependencies implements spec §4.5's component_dependencies:
// the PRECEDES+CALLS closure from component_id, depth-bounded BFS,
// cycle-safe via a visited set (spec §8 scenario S5).
func (e *Engine) ComponentDependencies(ctx context.Context, componentID string, direction string, maxDepth int) ([]graph.Node, error) {
	if _, ok := e.snap.Node(componentID); !ok {
		return nil, apperrors.New(apperrors.UnknownEntity, "no component found with id "+componentID).
			WithField("component_id", componentID)
	}

	visited := map[string]bool{componentID: true}
	type item struct {
		id    string
		depth int
	}
	queue := []item{{componentID, 0}}
	var out []graph.Node

	explored := 0
	for len(queue) > 0 {
		if explored%100 == 0 {
			select {
			case <-ctx.Done():
				return out, apperrors.Wrap(apperrors.Cancelled, "dependency walk cancelled", ctx.Err())
			default:
			}
		}
		cur := queue[0]
		queue = queue[1:]
		explored++
		if explored > MaxNodesExplored {
			break
		}
		if cur.depth >= maxDepth {
			continue
		}

		var edges []graph.Edge
		switch direction {
		case "downstream":
			edges = e.snap.OutEdges(cur.id, ir.DepPrecedes, ir.DepCalls)
		case "upstream":
			edges = e.snap.InEdges(cur.id, ir.DepPrecedes, ir.DepCalls)
		default:
			edges = append(e.snap.OutEdges(cur.id, ir.DepPrecedes, ir.DepCalls), e.snap.InEdges(cur.id, ir.DepPrecedes, ir.DepCalls)...)
		}
		sort.Slice(edges, func(i, j int) bool { return neighborID(edges[i], direction, cur.id) < neighborID(edges[j], direction, cur.id) })

		for _, edge := range edges {
			next := neighborID(edge, direction, cur.id)
			if visited[next] {
				continue
			}
			visited[next] = true
			n, ok := e.snap.Node(next)
			if !ok {
				continue
			}
			out = append(out, n)
			queue = append(queue, item{next, cur.depth + 1})
		}
	}

	sortNodesDeterministic(out)
	return out, nil
}

func neighborID(e graph.Edge, direction, from string) string {
	if direction == "upstream" {
		return e.From
	}
	if e.From == from {
		return e.To
	}
	return e.From
}

func sortNodesDeterministic(nodes []graph.Node) {
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
