// Package vectorindex provides semantic search over component and data
// entity text, grounded on the teacher's pkg/ingestion embedding provider
// zoo (Mock/Ollama) and codenerd's EmbeddingEngine/CosineSimilarity idiom.
// An Index is keyed by node id so it can be kept consistent with a
// pkg/graph.Graph one commit at a time.
package vectorindex
