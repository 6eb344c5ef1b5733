package pipeline

import "errors"

var (
	// ErrChunkerRequired is returned when no chunker is provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrGeneratorRequired is returned when no embedding generator is provided.
	ErrGeneratorRequired = errors.New("embedding generator required")

	// ErrIndexRequired is returned when no index store is provided.
	ErrIndexRequired = errors.New("index store required")

	// ErrGraphRequired is returned when no graph store is provided.
	ErrGraphRequired = errors.New("graph store required")

	// ErrCheckpointsRequired is returned when no checkpoint repository is provided.
	ErrCheckpointsRequired = errors.New("checkpoint repository required")

	// ErrEmbeddingsRequired is returned when no embedding repository is provided.
	ErrEmbeddingsRequired = errors.New("embedding repository required")

	// ErrSourceRequired is returned when a run is started without a content source.
	ErrSourceRequired = errors.New("content source required")
)
