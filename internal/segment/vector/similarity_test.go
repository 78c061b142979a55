package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeProducesUnitVector(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	require.InDelta(t, 1.0, math.Hypot(float64(v[0]), float64(v[1])), 1e-6)
}

func TestCosineScoreOfIdenticalNormalizedVectorsIsOne(t *testing.T) {
	a := []float32{1, 2, 3}
	Normalize(a)
	b := append([]float32(nil), a...)
	require.InDelta(t, 1.0, float64(SimilarityCosine.Score(a, b)), 1e-5)
}

func TestQuantizeDequantizeRoundTripsApproximately(t *testing.T) {
	v := []float32{-1, -0.5, 0, 0.5, 1}
	q := Quantize(v)
	got := q.Dequantize()
	require.Len(t, got, len(v))
	for i := range v {
		require.InDelta(t, v[i], got[i], 0.01)
	}
}

func TestQuantizeConstantVectorDoesNotDivideByZero(t *testing.T) {
	v := []float32{2, 2, 2}
	q := Quantize(v)
	got := q.Dequantize()
	for _, x := range got {
		require.Equal(t, float32(2), x)
	}
}
