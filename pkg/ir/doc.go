// Package ir defines the canonical intermediate representation that every
// per-format parser (pkg/parsers) produces and the graph builder
// (pkg/graph) consumes: Document, Component, DataSource, DataEntity,
// Parameter and Dependency, plus the ParsedDocument aggregate that ties
// one parse result together.
//
// Identity is deterministic: re-parsing the same bytes must yield the
// same IDs, so that re-ingesting an unchanged file is a no-op and
// cross-document entities with equal normalized identity intern onto the
// same node.
package ir
