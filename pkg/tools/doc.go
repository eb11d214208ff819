// Package tools exposes the engine's operations as typed, JSON-serializable
// request/response pairs, grounded on the teacher's Querier-shaped service
// interface in pkg/tools/client.go. Unlike the teacher's tool surface,
// which formats query results as markdown for an LLM to read, every
// operation here returns a struct: the spec requires machine-readable
// output, never prose.
package tools
