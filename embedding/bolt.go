package embedding

import (
	"fmt"

	"github.com/poiesic/indexit/core"
)

// Default fusion weights. Structural features carry less signal than the
// meaning-derived vector, so the semantic side dominates.
const (
	DefaultStructuralWeight float32 = 0.4
	DefaultSemanticWeight   float32 = 0.6
)

// Combine bolts a structural and a semantic vector together: weighted sum
// followed by L2 normalization. The inputs must share a dimension; weights
// must be non-negative and not both zero.
func Combine(structural, semantic []float32, ws, wm float32) ([]float32, error) {
	if len(structural) == 0 || len(semantic) == 0 {
		return nil, core.ErrNoVectors
	}
	if len(structural) != len(semantic) {
		return nil, &core.DimensionMismatchError{Want: len(structural), Got: len(semantic)}
	}
	if ws < 0 || wm < 0 {
		return nil, fmt.Errorf("%w: (%v, %v)", core.ErrNegativeWeight, ws, wm)
	}
	if ws == 0 && wm == 0 {
		return nil, fmt.Errorf("%w: both weights are zero", core.ErrNegativeWeight)
	}

	combined := make([]float32, len(structural))
	for i := range combined {
		combined[i] = structural[i]*ws + semantic[i]*wm
	}
	return Normalize(combined), nil
}

// Rebolt recomputes the combined vector of a retained multi-vector record at
// custom weights, without regenerating either source vector. Degraded
// records have no semantic vector and always yield the structural vector.
func Rebolt(m *core.MultiVectorEmbedding, ws, wm float32) ([]float32, error) {
	if m == nil || len(m.Structural) == 0 {
		return nil, core.ErrNoVectors
	}
	if m.Degraded || len(m.Semantic) == 0 {
		out := make([]float32, len(m.Structural))
		copy(out, m.Structural)
		return out, nil
	}
	return Combine(m.Structural, m.Semantic, ws, wm)
}
