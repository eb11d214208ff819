// Package storage provides the persistence backend abstraction for
// TraceAI: the SQL store in which the persistent vector index
// (vectorindex.SQLiteIndex) keeps its embeddings between runs. The schema
// also declares tables for the IR entity types, but nothing in the module
// writes to them; the graph snapshot is a separate gzip+JSON file written
// by graph.Save.
//
// Backend keeps the teacher's storage-abstraction shape (embedded vs.
// remote, single RWMutex-guarded writer) but speaks SQL against
// github.com/mattn/go-sqlite3 rather than CozoDB Datalog, since CozoDB's
// cgo bindings require a vendored libcozo_c.a this module does not carry.
package storage
