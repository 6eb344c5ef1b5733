// Package embedding produces zero-shot bolted embeddings: for each content
// unit it computes a structural vector from local syntactic features, a
// semantic vector from a generated natural-language description, and a
// weighted fusion of the two.
//
// All three vectors are retained on a core.MultiVectorEmbedding so the
// fusion can be re-weighted at query time without regenerating either
// source vector.
//
// The semantic step is the system's only suspension point: it calls the
// external generative model and the text embedder, bounded by an
// admission-control semaphore and retried with exponential backoff. When
// retries are exhausted the unit degrades to a structural-only embedding
// instead of failing.
package embedding
