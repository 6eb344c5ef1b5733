package embedding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/ai/mock"
	"github.com/poiesic/indexit/core"
)

func testGenerator(t *testing.T, opts ...GeneratorOption) (*Generator, *mock.MockEmbedder, *mock.MockGenerator) {
	t.Helper()

	embedder := mock.NewMockEmbedder()
	generator := mock.NewMockGenerator()

	base := []GeneratorOption{
		WithDimension(64),
		WithRetry(2, time.Millisecond),
	}
	g, err := NewGenerator(embedder, generator, append(base, opts...)...)
	require.NoError(t, err)
	return g, embedder, generator
}

func testUnit() Unit {
	return Unit{
		Path:        "src/parser.go",
		Language:    "go",
		Content:     goSample,
		Granularity: core.GranularityChunk,
		ChunkIndex:  2,
	}
}

func TestNewGenerator(t *testing.T) {
	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewGenerator(nil, mock.NewMockGenerator())
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("requires generator", func(t *testing.T) {
		_, err := NewGenerator(mock.NewMockEmbedder(), nil)
		assert.ErrorIs(t, err, ErrGeneratorRequired)
	})

	t.Run("rejects invalid dimension", func(t *testing.T) {
		_, err := NewGenerator(mock.NewMockEmbedder(), mock.NewMockGenerator(), WithDimension(0))
		assert.ErrorIs(t, err, ErrInvalidDimension)
	})

	t.Run("rejects negative weight", func(t *testing.T) {
		_, err := NewGenerator(mock.NewMockEmbedder(), mock.NewMockGenerator(), WithWeights(-1, 1))
		assert.ErrorIs(t, err, core.ErrNegativeWeight)
	})
}

func TestGeneratorGenerate(t *testing.T) {
	t.Run("produces all three aspects", func(t *testing.T) {
		g, _, _ := testGenerator(t)

		m, err := g.Generate(context.Background(), testUnit())
		require.NoError(t, err)

		assert.Len(t, m.Structural, 64)
		assert.Len(t, m.Semantic, 64)
		assert.Len(t, m.Combined, 64)
		assert.Equal(t, 64, m.Dimension)
		assert.False(t, m.Degraded)
		assert.Equal(t, len(goSample), m.SourceBytes)
		assert.NoError(t, core.ValidateMultiVector(m))

		assert.InDelta(t, 1.0, vectorLength(m.Structural), 1e-6)
		assert.InDelta(t, 1.0, vectorLength(m.Semantic), 1e-6)
		assert.InDelta(t, 1.0, vectorLength(m.Combined), 1e-6)
	})

	t.Run("id is derived from provenance", func(t *testing.T) {
		g, _, _ := testGenerator(t)
		unit := testUnit()

		m, err := g.Generate(context.Background(), unit)
		require.NoError(t, err)

		want := core.Provenance{
			Path:        unit.Path,
			Granularity: unit.Granularity,
			ChunkIndex:  unit.ChunkIndex,
		}
		assert.Equal(t, want.ID(), m.Id)
		assert.Equal(t, want, m.Provenance)
	})

	t.Run("degrades when generator keeps failing", func(t *testing.T) {
		g, _, generator := testGenerator(t)
		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("model unavailable")
		}

		m, err := g.Generate(context.Background(), testUnit())
		require.NoError(t, err)

		assert.True(t, m.Degraded)
		assert.Empty(t, m.Semantic)
		assert.Equal(t, m.Structural, m.Combined)
		assert.Equal(t, 2, generator.CallCount(), "should exhaust both attempts")
		assert.NoError(t, core.ValidateMultiVector(m))
	})

	t.Run("degrades when embedder keeps failing", func(t *testing.T) {
		g, embedder, _ := testGenerator(t)
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("embedding endpoint down")
		}

		m, err := g.Generate(context.Background(), testUnit())
		require.NoError(t, err)
		assert.True(t, m.Degraded)
	})

	t.Run("recovers on retry", func(t *testing.T) {
		g, _, generator := testGenerator(t)
		var calls atomic.Int64
		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			if calls.Add(1) == 1 {
				return "", errors.New("transient")
			}
			return "a parser for configuration files", nil
		}

		m, err := g.Generate(context.Background(), testUnit())
		require.NoError(t, err)
		assert.False(t, m.Degraded)
		assert.Len(t, m.Semantic, 64)
	})

	t.Run("feature extraction failure aborts the unit", func(t *testing.T) {
		g, _, _ := testGenerator(t)
		unit := testUnit()
		unit.Content = ""

		_, err := g.Generate(context.Background(), unit)
		assert.ErrorIs(t, err, core.ErrFeatureExtraction)
	})

	t.Run("cancelled context aborts instead of degrading", func(t *testing.T) {
		g, _, generator := testGenerator(t)
		ctx, cancel := context.WithCancel(context.Background())
		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			cancel()
			return "", ctx.Err()
		}

		_, err := g.Generate(ctx, testUnit())
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("oversized model vector is truncated", func(t *testing.T) {
		g, embedder, _ := testGenerator(t)
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return mock.DeterministicVector(text, 768), nil
		}

		m, err := g.Generate(context.Background(), testUnit())
		require.NoError(t, err)
		assert.Len(t, m.Semantic, 64)
		assert.InDelta(t, 1.0, vectorLength(m.Semantic), 1e-6)
	})

	t.Run("registered extractor takes precedence", func(t *testing.T) {
		g, _, _ := testGenerator(t)
		custom := &mock.MockExtractor{Lang: "go"}
		custom.ExtractFunc = func(content, language string) (*ai.FeatureSet, error) {
			return &ai.FeatureSet{Bytes: len(content), Lines: 1, Tokens: 1}, nil
		}
		g.Registry().Register(custom)

		_, err := g.Generate(context.Background(), testUnit())
		require.NoError(t, err)
		assert.Equal(t, 1, custom.CallCount())
	})
}

func TestGeneratorGenerateChunk(t *testing.T) {
	g, _, _ := testGenerator(t)

	chunk := core.Chunk{
		Source:    "src/parser.go",
		Language:  "go",
		Content:   goSample,
		StartLine: 1,
		EndLine:   12,
		Index:     0,
	}

	m, err := g.GenerateChunk(context.Background(), chunk)
	require.NoError(t, err)
	assert.Equal(t, core.GranularityChunk, m.Provenance.Granularity)
	assert.Equal(t, chunk.Source, m.Provenance.Path)
	assert.Equal(t, chunk.Index, m.Provenance.ChunkIndex)
}

func TestGeneratorAdmissionControl(t *testing.T) {
	var inFlight, maxInFlight atomic.Int64

	g, _, generator := testGenerator(t, WithMaxOutstanding(2))
	generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			observed := maxInFlight.Load()
			if current <= observed || maxInFlight.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return "description", nil
	}

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func(i int) {
			unit := testUnit()
			unit.ChunkIndex = i
			_, err := g.Generate(context.Background(), unit)
			done <- err
		}(i)
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}

	assert.LessOrEqual(t, maxInFlight.Load(), int64(2),
		"no more than two generative calls may be outstanding")
}

func TestGeneratorAggregateFile(t *testing.T) {
	ctx := context.Background()

	chunkEmbeddings := func(t *testing.T, g *Generator, contents ...string) []*core.MultiVectorEmbedding {
		t.Helper()
		out := make([]*core.MultiVectorEmbedding, len(contents))
		for i, content := range contents {
			unit := testUnit()
			unit.Content = content
			unit.ChunkIndex = i
			m, err := g.Generate(ctx, unit)
			require.NoError(t, err)
			out[i] = m
		}
		return out
	}

	t.Run("aggregates chunk aspects", func(t *testing.T) {
		g, _, _ := testGenerator(t)
		chunks := chunkEmbeddings(t, g, goSample, "package sample\n\nvar answer = 42\n")

		file, err := g.AggregateFile("src/parser.go", "go", chunks)
		require.NoError(t, err)

		assert.Equal(t, core.GranularityFile, file.Provenance.Granularity)
		assert.Equal(t, "src/parser.go", file.Provenance.Path)
		assert.False(t, file.Degraded)
		assert.InDelta(t, 1.0, vectorLength(file.Structural), 1e-6)
		assert.InDelta(t, 1.0, vectorLength(file.Semantic), 1e-6)
		assert.InDelta(t, 1.0, vectorLength(file.Combined), 1e-6)
		assert.Equal(t, chunks[0].SourceBytes+chunks[1].SourceBytes, file.SourceBytes)
	})

	t.Run("degraded chunks still contribute structure", func(t *testing.T) {
		g, _, generator := testGenerator(t)
		healthy := chunkEmbeddings(t, g, goSample)

		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("down")
		}
		degraded := chunkEmbeddings(t, g, "var broken = true\n")
		require.True(t, degraded[0].Degraded)

		file, err := g.AggregateFile("src/parser.go", "go", append(healthy, degraded...))
		require.NoError(t, err)
		assert.False(t, file.Degraded, "one semantic contributor is enough")
	})

	t.Run("degrades when no chunk has meaning", func(t *testing.T) {
		g, _, generator := testGenerator(t)
		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("down")
		}
		chunks := chunkEmbeddings(t, g, goSample, "var x = 1\n")

		file, err := g.AggregateFile("src/parser.go", "go", chunks)
		require.NoError(t, err)
		assert.True(t, file.Degraded)
		assert.Empty(t, file.Semantic)
		assert.Equal(t, file.Structural, file.Combined)
	})

	t.Run("no chunks", func(t *testing.T) {
		g, _, _ := testGenerator(t)
		_, err := g.AggregateFile("src/parser.go", "go", nil)
		assert.ErrorIs(t, err, ErrNoChunkEmbeddings)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		g, _, _ := testGenerator(t)
		bad := &core.MultiVectorEmbedding{Dimension: 32, Structural: make([]float32, 32)}

		_, err := g.AggregateFile("src/parser.go", "go", []*core.MultiVectorEmbedding{bad})
		var mismatch *core.DimensionMismatchError
		assert.ErrorAs(t, err, &mismatch)
	})
}
