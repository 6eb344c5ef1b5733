// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/core"
)

const (
	// DefaultDimension is the embedding dimension when none is configured.
	DefaultDimension = 256

	// DefaultMaxOutstanding bounds concurrent generative-model calls.
	DefaultMaxOutstanding = 4

	// DefaultMaxRetries bounds attempts of the semantic step per unit.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the base for exponential backoff.
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// Unit is one content unit to embed: a chunk, a file, a function or a module.
type Unit struct {
	Path        string
	Language    string
	ContentType string
	Content     string
	Granularity core.Granularity
	ChunkIndex  int
}

// Generator produces multi-vector embeddings for content units.
//
// The structural vector is computed locally and deterministically. The
// semantic vector requires two external calls (generate a description, then
// embed it); those calls are admission-controlled and retried. Generation is
// safe for concurrent use.
type Generator struct {
	embedder  ai.Embedder
	generator ai.Generator
	registry  *Registry

	dimension        int
	structuralWeight float32
	semanticWeight   float32
	maxRetries       int
	retryBaseDelay   time.Duration

	// admission bounds outstanding external generative calls; callers
	// beyond the limit queue on Acquire rather than spawn unboundedly.
	admission *semaphore.Weighted

	logger *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator) error

// WithDimension sets the embedding dimension for all aspect vectors.
func WithDimension(dim int) GeneratorOption {
	return func(g *Generator) error {
		if dim <= 0 {
			return ErrInvalidDimension
		}
		g.dimension = dim
		return nil
	}
}

// WithWeights sets the default bolting weights.
func WithWeights(structural, semantic float32) GeneratorOption {
	return func(g *Generator) error {
		if structural < 0 || semantic < 0 {
			return core.ErrNegativeWeight
		}
		g.structuralWeight = structural
		g.semanticWeight = semantic
		return nil
	}
}

// WithMaxOutstanding bounds concurrent external generative calls.
func WithMaxOutstanding(n int) GeneratorOption {
	return func(g *Generator) error {
		if n < 1 {
			n = 1
		}
		g.admission = semaphore.NewWeighted(int64(n))
		return nil
	}
}

// WithRetry configures the bounded retry of the semantic step.
func WithRetry(maxRetries int, baseDelay time.Duration) GeneratorOption {
	return func(g *Generator) error {
		if maxRetries <= 0 {
			return ErrInvalidMaxAttempts
		}
		g.maxRetries = maxRetries
		g.retryBaseDelay = baseDelay
		return nil
	}
}

// WithRegistry substitutes the feature extractor registry.
func WithRegistry(registry *Registry) GeneratorOption {
	return func(g *Generator) error {
		if registry != nil {
			g.registry = registry
		}
		return nil
	}
}

// WithGeneratorLogger sets a custom logger. Default is slog.Default().
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) error {
		if logger != nil {
			g.logger = logger
		}
		return nil
	}
}

// NewGenerator creates an embedding generator backed by the given
// collaborators.
func NewGenerator(embedder ai.Embedder, generator ai.Generator, opts ...GeneratorOption) (*Generator, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	g := &Generator{
		embedder:         embedder,
		generator:        generator,
		registry:         NewRegistry(),
		dimension:        DefaultDimension,
		structuralWeight: DefaultStructuralWeight,
		semanticWeight:   DefaultSemanticWeight,
		maxRetries:       DefaultMaxRetries,
		retryBaseDelay:   DefaultRetryBaseDelay,
		admission:        semaphore.NewWeighted(DefaultMaxOutstanding),
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Dimension returns the configured embedding dimension.
func (g *Generator) Dimension() int {
	return g.dimension
}

// Registry returns the feature extractor registry for language registration.
func (g *Generator) Registry() *Registry {
	return g.registry
}

// Generate produces the multi-vector embedding for one unit.
//
// A feature extraction failure aborts the unit. A semantic failure after
// exhausted retries does not: the unit degrades to a structural-only
// embedding flagged Degraded, deferring the acceptability decision to the
// caller. A cancelled context aborts the unit with the context error so no
// partial result can be committed.
func (g *Generator) Generate(ctx context.Context, unit Unit) (*core.MultiVectorEmbedding, error) {
	features, err := g.registry.Lookup(unit.Language).Extract(unit.Content, unit.Language)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrFeatureExtraction, err)
	}
	structural := structuralVector(features, g.dimension)

	provenance := core.Provenance{
		Path:        unit.Path,
		Granularity: unit.Granularity,
		ChunkIndex:  unit.ChunkIndex,
	}

	semantic, semErr := g.semanticVector(ctx, unit)
	if semErr != nil {
		if ctx.Err() != nil {
			// Cancellation is not degradation: discard the unit entirely.
			return nil, ctx.Err()
		}
		g.logger.Warn("semantic embedding failed, degrading to structural-only",
			"path", unit.Path, "granularity", unit.Granularity.String(), "err", semErr)
		return g.degraded(structural, provenance, len(unit.Content)), nil
	}

	combined, err := Combine(structural, semantic, g.structuralWeight, g.semanticWeight)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrEmbeddingFailed, err)
	}

	return &core.MultiVectorEmbedding{
		Id:          provenance.ID(),
		Structural:  structural,
		Semantic:    semantic,
		Combined:    combined,
		Dimension:   g.dimension,
		Provenance:  provenance,
		SourceBytes: len(unit.Content),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// GenerateChunk embeds a single chunk produced by the chunker.
func (g *Generator) GenerateChunk(ctx context.Context, chunk core.Chunk) (*core.MultiVectorEmbedding, error) {
	return g.Generate(ctx, Unit{
		Path:        chunk.Source,
		Language:    chunk.Language,
		Content:     chunk.Content,
		Granularity: core.GranularityChunk,
		ChunkIndex:  chunk.Index,
	})
}

// AggregateFile produces the file-level embedding from the file's chunk
// embeddings. Callers must pass every chunk embedding of the file: this is
// the pipeline's join barrier, a file embedding cannot exist before its
// constituents do.
//
// Each aspect is the normalized mean of the chunks' aspect vectors.
// Degraded chunks contribute structure but no meaning; the file record is
// flagged Degraded only when no chunk contributed a semantic vector.
func (g *Generator) AggregateFile(path, language string, chunks []*core.MultiVectorEmbedding) (*core.MultiVectorEmbedding, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunkEmbeddings
	}

	structural := make([]float32, g.dimension)
	semantic := make([]float32, g.dimension)
	semanticContributors := 0
	sourceBytes := 0

	for _, chunk := range chunks {
		if chunk.Dimension != g.dimension {
			return nil, &core.DimensionMismatchError{Want: g.dimension, Got: chunk.Dimension}
		}
		for i, v := range chunk.Structural {
			structural[i] += v
		}
		if !chunk.Degraded && len(chunk.Semantic) == g.dimension {
			for i, v := range chunk.Semantic {
				semantic[i] += v
			}
			semanticContributors++
		}
		sourceBytes += chunk.SourceBytes
	}

	structural = Normalize(structural)
	provenance := core.Provenance{Path: path, Granularity: core.GranularityFile}

	if semanticContributors == 0 {
		return g.degraded(structural, provenance, sourceBytes), nil
	}

	semantic = Normalize(semantic)
	combined, err := Combine(structural, semantic, g.structuralWeight, g.semanticWeight)
	if err != nil {
		return nil, err
	}

	return &core.MultiVectorEmbedding{
		Id:          provenance.ID(),
		Structural:  structural,
		Semantic:    semantic,
		Combined:    combined,
		Dimension:   g.dimension,
		Provenance:  provenance,
		SourceBytes: sourceBytes,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// semanticVector runs the external description and embedding calls under
// admission control and bounded retry.
func (g *Generator) semanticVector(ctx context.Context, unit Unit) ([]float32, error) {
	var vector []float32

	err := RetryWithBackoff(ctx, func() error {
		if err := g.admission.Acquire(ctx, 1); err != nil {
			return err
		}
		defer g.admission.Release(1)

		description, err := g.generator.Generate(ctx, describePrompt(unit.Language, unit.Content))
		if err != nil {
			return err
		}

		raw, err := g.embedder.EmbedText(ctx, description)
		if err != nil {
			return err
		}
		if len(raw) == 0 {
			return fmt.Errorf("%w: embedder returned empty vector", core.ErrEmbeddingFailed)
		}

		vector = Normalize(fitDimension(raw, g.dimension))
		return nil
	}, g.maxRetries, g.retryBaseDelay)

	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %s", core.ErrEmbeddingFailed, g.maxRetries, err)
	}
	return vector, nil
}

// degraded builds a structural-only record whose combined vector is the
// structural vector itself.
func (g *Generator) degraded(structural []float32, provenance core.Provenance, sourceBytes int) *core.MultiVectorEmbedding {
	combined := make([]float32, len(structural))
	copy(combined, structural)
	return &core.MultiVectorEmbedding{
		Id:          provenance.ID(),
		Structural:  structural,
		Combined:    combined,
		Dimension:   g.dimension,
		Provenance:  provenance,
		SourceBytes: sourceBytes,
		Degraded:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

// fitDimension pads with zeros or truncates a raw model vector to the
// configured dimension, keeping the two embedding spaces numerically
// compatible regardless of the remote model's native size.
func fitDimension(v []float32, dim int) []float32 {
	if len(v) == dim {
		return v
	}
	out := make([]float32, dim)
	copy(out, v)
	return out
}
