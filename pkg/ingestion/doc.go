// Package ingestion coordinates discovery, parsing, and graph/vector-index
// commit for a directory of source artifacts: discovery (glob expansion +
// dedupe), admission (registry validation), bounded-parallel parsing, and
// serial, arrival-ordered commit, followed by a final deferred-reference
// resolution pass. Grounded on the teacher's LocalPipeline (pkg/ingestion/
// local_pipeline.go): same Run()-returns-a-report shape, same
// worker-pool/job-channel parallel-parse idiom, same checkpoint and
// Prometheus-metrics conventions, retargeted from a CozoDB write to a
// pkg/graph commit and a pkg/vectorindex upsert.
package ingestion
