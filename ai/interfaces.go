package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch, returned in input order. Batch processing is more efficient
	// than calling EmbedText multiple times.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator is the opaque generative-model collaborator: given a prompt it
// returns generated text. Calls may block, time out, or fail; callers are
// responsible for retries and admission control.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FeatureExtractor produces structural features from raw content. It is
// deterministic and synchronous: identical input always yields the identical
// feature set, and no external service is consulted. It fails only on
// malformed input.
type FeatureExtractor interface {
	// Extract analyzes content tagged with a language and returns its
	// structural feature set.
	Extract(content, language string) (*FeatureSet, error)

	// Language returns the language tag this extractor serves, or "" for a
	// generic extractor usable as a fallback.
	Language() string
}

// Provider aggregates the remote AI services for convenient initialization
// and lifecycle management. A provider creates and manages Embedder and
// Generator instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the generative-model service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
