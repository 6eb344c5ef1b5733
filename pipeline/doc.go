// Package pipeline provides orchestration for indexing runs.
//
// The Orchestrator type drives the full workflow over a set of inputs:
//   - Chunking content adaptively under a memory ceiling
//   - Generating multi-vector embeddings concurrently
//   - Committing embeddings to the vector index in batch snapshots
//   - Merging discovered relationship edges into the graph
//   - Appending a checkpoint after every committed batch
//
// Inputs are processed in bounded batches over a worker pool. A file-level
// embedding is produced only after every chunk of the file has been
// embedded. Runs resume from the checkpoint log: inputs recorded complete
// are skipped, and re-inserts of the remainder are idempotent.
package pipeline
