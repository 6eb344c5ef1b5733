package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEdge(t *testing.T) {
	tests := []struct {
		name    string
		edge    GraphEdge
		wantErr error
	}{
		{
			name: "valid call edge",
			edge: GraphEdge{From: "fn:a", To: "fn:b", Kind: EdgeCall},
		},
		{
			name: "valid self-loop",
			edge: GraphEdge{From: "fn:rec", To: "fn:rec", Kind: EdgeCall},
		},
		{
			name:    "empty source",
			edge:    GraphEdge{From: "", To: "fn:b", Kind: EdgeCall},
			wantErr: ErrMalformedEdge,
		},
		{
			name:    "empty target",
			edge:    GraphEdge{From: "fn:a", To: "", Kind: EdgeImport},
			wantErr: ErrMalformedEdge,
		},
		{
			name:    "unknown kind",
			edge:    GraphEdge{From: "fn:a", To: "fn:b", Kind: EdgeKind(99)},
			wantErr: ErrMalformedEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEdge(tt.edge)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMultiVector(t *testing.T) {
	valid := func() *MultiVectorEmbedding {
		return &MultiVectorEmbedding{
			Id:         1,
			Structural: []float32{1, 0},
			Semantic:   []float32{0, 1},
			Combined:   []float32{0.5, 0.5},
			Dimension:  2,
			Provenance: Provenance{Path: "a.go", Granularity: GranularityFile},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateMultiVector(valid()))
	})

	t.Run("nil embedding", func(t *testing.T) {
		assert.Error(t, ValidateMultiVector(nil))
	})

	t.Run("structural dimension mismatch", func(t *testing.T) {
		m := valid()
		m.Structural = []float32{1}
		err := ValidateMultiVector(m)
		var mismatch *DimensionMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 2, mismatch.Want)
		assert.Equal(t, 1, mismatch.Got)
	})

	t.Run("missing semantic requires degraded flag", func(t *testing.T) {
		m := valid()
		m.Semantic = nil
		assert.Error(t, ValidateMultiVector(m))

		m.Degraded = true
		assert.NoError(t, ValidateMultiVector(m))
	})

	t.Run("invalid granularity", func(t *testing.T) {
		m := valid()
		m.Provenance.Granularity = Granularity(9)
		assert.Error(t, ValidateMultiVector(m))
	})
}
