package embedding

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbedderRequired indicates no text embedder was supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrGeneratorRequired indicates no generative collaborator was supplied.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrInvalidDimension indicates a non-positive target dimension.
	ErrInvalidDimension = errors.New("dimension must be positive")

	// ErrNoChunkEmbeddings indicates a file aggregation over zero chunks.
	ErrNoChunkEmbeddings = errors.New("no chunk embeddings to aggregate")
)
