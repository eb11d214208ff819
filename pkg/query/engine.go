package query

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/graph"
)

// MaxNodesExplored bounds traversal work, per spec §4.5's default
// implementation-defined cap; mirrors the teacher's maxNodesExplored
// safety limit in pkg/tools/trace.go.
const MaxNodesExplored = 100_000

// Engine answers queries against one consistent graph snapshot.
type Engine struct {
	snap *graph.Snapshot
}

// New wraps a snapshot for querying. Callers take a fresh snapshot per
// logical "as of" point, per spec §5.
func New(snap *graph.Snapshot) *Engine {
	return &Engine{snap: snap}
}

// Stats mirrors graph.Snapshot.Stats; exposed here so callers only need
// to depend on pkg/query for every C5 operation.
func (e *Engine) Stats() graph.Stats {
	return e.snap.Stats()
}

// FindNodesArgs parameterizes find_nodes.
type FindNodesArgs struct {
	Kind          graph.NodeKind // empty = any kind
	NameSubstring string         // empty = no filter
	Limit         int            // 0 = no limit
}

// FindNodes performs a linear scan with early exit, deterministic
// ordering by (kind, name, id), per spec §4.5.
func (e *Engine) FindNodes(args FindNodesArgs) []graph.Node {
	var out []graph.Node
	needle := strings.ToLower(args.NameSubstring)
	for _, n := range e.snap.AllNodes() {
		if args.Kind != "" && n.Kind != args.Kind {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(n.Name), needle) && !strings.Contains(strings.ToLower(n.Attrs["alias"]), needle) {
			continue
		}
		out = append(out, n)
		if args.Limit > 0 && len(out) >= args.Limit {
			break
		}
	}
	return out
}

// FindByName performs a case-insensitive substring match over all nodes.
func (e *Engine) FindByName(pattern string) []graph.Node {
	return e.FindNodes(FindNodesArgs{NameSubstring: pattern})
}

// nodesByNormalizedName returns every DataEntity/DataSource node whose name,
// or whose alternate alias attribute (a DataSource can be named differently
// by the program that reads it than by the device/DSN it interns on),
// equals entityName case-insensitively.
func (e *Engine) nodesByNormalizedName(entityName string) []graph.Node {
	var matches []graph.Node
	lower := strings.ToLower(entityName)
	for _, n := range e.snap.AllNodes() {
		if n.Kind != graph.NodeDataEntity && n.Kind != graph.NodeDataSource {
			continue
		}
		if strings.ToLower(n.Name) == lower || strings.ToLower(n.Attrs["alias"]) == lower {
			matches = append(matches, n)
		}
	}
	return matches
}

// suggestSimilar returns up to 3 node names edit-distance-close to query,
// for UnknownEntity error messages — a supplemented feature (see
// SPEC_FULL.md) grounded on standardbeagle-lci's fuzzy-matching idiom,
// implemented here with github.com/hbollon/go-edlib.
func (e *Engine) suggestSimilar(query string) []string {
	type scored struct {
		name  string
		score float32
	}
	var candidates []scored
	seen := map[string]bool{}
	for _, n := range e.snap.AllNodes() {
		if n.Kind != graph.NodeDataEntity && n.Kind != graph.NodeDataSource {
			continue
		}
		if seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		sim, err := edlib.StringsSimilarity(query, n.Name, edlib.Levenshtein)
		if err != nil {
			continue
		}
		candidates = append(candidates, scored{n.Name, sim})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	var out []string
	for i := 0; i < len(candidates) && i < 3; i++ {
		if candidates[i].score < 0.4 {
			break
		}
		out = append(out, candidates[i].name)
	}
	return out
}

// unknownEntityError builds the UnknownEntity error spec §7 requires,
// with a "did you mean" hint when one is available.
func (e *Engine) unknownEntityError(entityName string) error {
	err := apperrors.New(apperrors.UnknownEntity, "no node found with name "+entityName).
		WithField("entity_name", entityName)
	if suggestions := e.suggestSimilar(entityName); len(suggestions) > 0 {
		err = err.WithFix("did you mean: " + strings.Join(suggestions, ", ") + "?")
	}
	return err
}
