package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent_Deterministic(t *testing.T) {
	id1 := IDFromContent("internal/server.go")
	id2 := IDFromContent("internal/server.go")
	id3 := IDFromContent("internal/client.go")

	assert.Equal(t, id1, id2, "identical content should produce identical IDs")
	assert.NotEqual(t, id1, id3, "different content should produce different IDs")
	assert.NotZero(t, id1)
}

func TestProvenanceID_Deterministic(t *testing.T) {
	p := Provenance{Path: "pkg/a.go", Granularity: GranularityChunk, ChunkIndex: 3}
	assert.Equal(t, p.ID(), p.ID())

	other := Provenance{Path: "pkg/a.go", Granularity: GranularityChunk, ChunkIndex: 4}
	assert.NotEqual(t, p.ID(), other.ID(), "chunk index must contribute to identity")

	file := Provenance{Path: "pkg/a.go", Granularity: GranularityFile}
	assert.NotEqual(t, p.ID(), file.ID(), "granularity must contribute to identity")
}

func TestAspectVector(t *testing.T) {
	m := &MultiVectorEmbedding{
		Structural: []float32{1, 0},
		Semantic:   []float32{0, 1},
		Combined:   []float32{0.5, 0.5},
	}

	assert.Equal(t, m.Structural, m.AspectVector(AspectStructural))
	assert.Equal(t, m.Semantic, m.AspectVector(AspectSemantic))
	assert.Equal(t, m.Combined, m.AspectVector(AspectBolted))
	assert.Nil(t, m.AspectVector(Aspect(99)))
}

func TestCheckpointMUS_Roundtrip(t *testing.T) {
	checkpoint := Checkpoint{
		BatchId:         7,
		CompletedInputs: []string{"a.go", "b.go", "dir/c.go"},
		SnapshotId:      3,
		UpdatedAt:       time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	buf := make([]byte, CheckpointMUS.Size(checkpoint))
	n := CheckpointMUS.Marshal(checkpoint, buf)
	require.Equal(t, len(buf), n, "marshal should fill the sized buffer exactly")

	decoded, n, err := CheckpointMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, checkpoint, decoded)
}

func TestMultiVectorEmbeddingMUS_Roundtrip(t *testing.T) {
	embedding := MultiVectorEmbedding{
		Id:          IDFromContent("x"),
		Structural:  []float32{0.1, -0.2, 0.3},
		Semantic:    []float32{0.4, 0.5, -0.6},
		Combined:    []float32{0.25, 0.15, -0.15},
		Dimension:   3,
		Provenance:  Provenance{Path: "pkg/a.go", Granularity: GranularityFile},
		SourceBytes: 512,
		Degraded:    false,
		CreatedAt:   time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	buf := make([]byte, MultiVectorEmbeddingMUS.Size(embedding))
	n := MultiVectorEmbeddingMUS.Marshal(embedding, buf)
	require.Equal(t, len(buf), n)

	decoded, _, err := MultiVectorEmbeddingMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, embedding, decoded)
}

func TestGranularityString(t *testing.T) {
	assert.Equal(t, "chunk", GranularityChunk.String())
	assert.Equal(t, "file", GranularityFile.String())
	assert.Equal(t, "function", GranularityFunction.String())
	assert.Equal(t, "module", GranularityModule.String())
	assert.Equal(t, "unknown", Granularity(42).String())
}
