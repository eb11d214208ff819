// Package graph implements the typed multigraph builder of spec §4.4: a
// single-writer, many-reader store that folds ir.ParsedDocument values
// into one graph, interning DataSource/DataEntity nodes across
// documents and resolving deferred cross-document references.
//
// Concurrency follows spec §5: commits serialize through one writer
// (Graph.mu); readers take an immutable Snapshot via a copy-on-write
// atomic pointer swap, so a query never observes a partially applied
// commit. Grounded on the teacher's pkg/storage/embedded.go
// RWMutex-around-a-single-resource idiom, generalized from "one cgo
// call" to "one atomic pointer swap of an immutable graph state".
package graph
