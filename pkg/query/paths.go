package query

import (
	"context"
	"sort"
	"strings"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/graph"
)

// Path is one simple path from a to b, inclusive of both endpoints.
type Path struct {
	Nodes []graph.Node
}

// maxPathsResult caps the work paths_between can do, per spec §4.5's
// "capped at a configurable result count to bound work".
const maxPathsResult = 200

// PathsBetween finds all simple paths from aID to bID up to maxLen hops,
// sorted shorter-first then lexicographically by concatenated node id,
// per spec §4.5's tie-breaking rule. This is the optional operation spec
// §4.5 marks as such; implemented here via bounded DFS since simple-path
// enumeration has no natural BFS form.
func (e *Engine) PathsBetween(ctx context.Context, aID, bID string, maxLen int) ([]Path, error) {
	if _, ok := e.snap.Node(aID); !ok {
		return nil, apperrors.New(apperrors.UnknownEntity, "no node found with id "+aID).WithField("a_id", aID)
	}
	if _, ok := e.snap.Node(bID); !ok {
		return nil, apperrors.New(apperrors.UnknownEntity, "no node found with id "+bID).WithField("b_id", bID)
	}

	var results []Path
	visited := map[string]bool{aID: true}
	var current []string

	var explored int
	var dfs func(node string) error
	dfs = func(node string) error {
		if explored%100 == 0 {
			select {
			case <-ctx.Done():
				return apperrors.Wrap(apperrors.Cancelled, "paths_between cancelled", ctx.Err())
			default:
			}
		}
		explored++
		if explored > MaxNodesExplored || len(results) >= maxPathsResult {
			return nil
		}
		if node == bID {
			results = append(results, buildPath(e.snap, append(append([]string(nil), current...), node)))
			return nil
		}
		if len(current) >= maxLen {
			return nil
		}

		neighbors := append(e.snap.OutEdges(node), e.snap.InEdges(node)...)
		seen := map[string]bool{}
		var ids []string
		for _, edge := range neighbors {
			other := edge.To
			if other == node {
				other = edge.From
			}
			if !seen[other] {
				seen[other] = true
				ids = append(ids, other)
			}
		}
		sort.Strings(ids)

		for _, next := range ids {
			if visited[next] || len(results) >= maxPathsResult {
				continue
			}
			visited[next] = true
			current = append(current, node)
			if err := dfs(next); err != nil {
				return err
			}
			current = current[:len(current)-1]
			visited[next] = false
		}
		return nil
	}

	if err := dfs(aID); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if len(results[i].Nodes) != len(results[j].Nodes) {
			return len(results[i].Nodes) < len(results[j].Nodes)
		}
		return concatIDs(results[i]) < concatIDs(results[j])
	})
	return results, nil
}

func buildPath(snap *graph.Snapshot, ids []string) Path {
	var p Path
	for _, id := range ids {
		if n, ok := snap.Node(id); ok {
			p.Nodes = append(p.Nodes, n)
		}
	}
	return p
}

func concatIDs(p Path) string {
	var sb strings.Builder
	for _, n := range p.Nodes {
		sb.WriteString(n.ID)
	}
	return sb.String()
}
