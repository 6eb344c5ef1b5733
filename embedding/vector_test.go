package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("produces unit length", func(t *testing.T) {
		v := Normalize([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := Normalize([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, Normalize(nil))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float32{1, 1}
		Normalize(in)
		assert.Equal(t, []float32{1, 1}, in)
	})
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 11.0, Dot([]float32{1, 2}, []float32{3, 4}), 1e-6)
	assert.InDelta(t, 3.0, Dot([]float32{1, 2, 5}, []float32{3}), 1e-6)
}

func TestCosine(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{1, 2, 3}
		assert.InDelta(t, 1.0, Cosine(v, v), 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		assert.Equal(t, float32(0), Cosine([]float32{1}, []float32{1, 2}))
	})

	t.Run("zero vector", func(t *testing.T) {
		assert.Equal(t, float32(0), Cosine([]float32{0, 0}, []float32{1, 2}))
	})

	t.Run("agrees with dot for unit vectors", func(t *testing.T) {
		a := Normalize([]float32{2, 5, -1, 3})
		b := Normalize([]float32{-4, 1, 0, 2})
		assert.InDelta(t, float64(Dot(a, b)), float64(Cosine(a, b)), 1e-6)
	})
}

func TestEuclidean(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, Euclidean([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-6)
	})

	t.Run("unit apart", func(t *testing.T) {
		assert.InDelta(t, 1.0, Euclidean([]float32{0, 0}, []float32{0, 1}), 1e-6)
	})

	t.Run("pythagorean", func(t *testing.T) {
		assert.InDelta(t, 5.0, Euclidean([]float32{0, 0}, []float32{3, 4}), 1e-6)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		assert.True(t, math.IsInf(float64(Euclidean([]float32{1}, []float32{1, 2})), 1))
	})
}

func vectorLength(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
