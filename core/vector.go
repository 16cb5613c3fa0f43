package core

import (
	"fmt"
	"math"
)

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	magnitude := Magnitude(v)

	// Can't normalize zero vector
	if magnitude == 0 {
		return make([]float32, len(v))
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	return float32(math.Sqrt(sum))
}

// Fuse combines per-field vectors into one vector as a weighted sum.
// All vectors must share the same length and there must be exactly one
// weight per vector. The result is NOT re-normalized.
func Fuse(weights []float32, vectors ...[]float32) ([]float32, error) {
	if len(weights) != len(vectors) {
		return nil, fmt.Errorf("%w: %d weights for %d vectors", ErrInvalidWeights, len(weights), len(vectors))
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no vectors to fuse", ErrInvalidWeights)
	}

	dim := len(vectors[0])
	fused := make([]float32, dim)
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d elements, want %d", ErrDimensionMismatch, i, len(vec), dim)
		}
		w := weights[i]
		for j, val := range vec {
			fused[j] += w * val
		}
	}
	return fused, nil
}

// DotProduct calculates the dot product of two vectors of equal length.
func DotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// L2Distance returns the Euclidean distance between two vectors of equal length.
func L2Distance(a, b []float32) float32 {
	return float32(math.Sqrt(float64(SquaredL2(a, b))))
}

// SquaredL2 returns the squared Euclidean distance between two vectors.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
