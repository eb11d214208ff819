// Package query implements the graph query engine of spec §4.5: stats,
// find_nodes, find_by_name, trace_lineage, analyze_impact,
// component_dependencies and paths_between, all operating over one
// graph.Snapshot so results are internally consistent (spec §5 snapshot
// isolation).
//
// The BFS machinery (visited sets, depth bounds, node-visited caps,
// cancellation checks, deterministic tie-breaking) is grounded on the
// teacher's pkg/tools/trace.go TracePath implementation, adapted from
// CozoScript string queries against a remote store to direct graph
// accessor calls, and from markdown output to typed structs per spec
// §4.8.
package query
