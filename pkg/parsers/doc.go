// Package parsers implements the per-format parser registry (spec §4.2)
// and the six concrete format parsers (spec §4.3): SSIS, COBOL, JCL,
// JSON config, Excel, CSV lineage. Every parser is a pure function of
// file bytes -> ir.ParsedDocument, safe to invoke concurrently on
// distinct paths, grounded on the teacher's pkg/ingestion/parser_*.go
// family.
package parsers
