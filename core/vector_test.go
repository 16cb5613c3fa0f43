package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{
			name:     "unit vector remains unchanged",
			input:    []float32{1.0, 0.0, 0.0},
			expected: []float32{1.0, 0.0, 0.0},
		},
		{
			name:     "scale non-unit vector",
			input:    []float32{3.0, 4.0},
			expected: []float32{0.6, 0.8},
		},
		{
			name:     "negative values",
			input:    []float32{-1.0, 1.0},
			expected: []float32{-1.0 / float32(math.Sqrt(2)), 1.0 / float32(math.Sqrt(2))},
		},
		{
			name:     "zero vector stays zero",
			input:    []float32{0, 0, 0},
			expected: []float32{0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)
			require.Len(t, result, len(tt.expected))
			for i := range result {
				assert.InDelta(t, tt.expected[i], result[i], 1e-6, "element %d", i)
			}
		})
	}

	t.Run("does not modify input", func(t *testing.T) {
		in := []float32{3, 4}
		NormalizeVector(in)
		assert.Equal(t, []float32{3, 4}, in)
	})
}

func TestFuse(t *testing.T) {
	title := []float32{1, 0, 0}
	abstract := []float32{0, 1, 0}
	summary := []float32{0, 0, 1}

	t.Run("weighted sum with default weights", func(t *testing.T) {
		fused, err := Fuse(DefaultWeights.Slice(), title, abstract, summary)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0.5, 0.3, 0.2}, fused, 1e-6)
	})

	t.Run("result is not re-normalized", func(t *testing.T) {
		fused, err := Fuse(DefaultWeights.Slice(), title, abstract, summary)
		require.NoError(t, err)
		expected := float32(math.Sqrt(0.25 + 0.09 + 0.04))
		assert.InDelta(t, expected, Magnitude(fused), 1e-6)
		assert.Less(t, Magnitude(fused), float32(1))
	})

	t.Run("identical fields keep unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{1, 2, 3})
		fused, err := Fuse(DefaultWeights.Slice(), v, v, v)
		require.NoError(t, err)
		assert.InDeltaSlice(t, v, fused, 1e-6)
	})

	t.Run("weight count mismatch", func(t *testing.T) {
		_, err := Fuse([]float32{1}, title, abstract)
		assert.ErrorIs(t, err, ErrInvalidWeights)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := Fuse([]float32{0.5, 0.5}, title, []float32{1})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestDistances(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 6, 3}

	assert.InDelta(t, 5.0, L2Distance(a, b), 1e-6)
	assert.InDelta(t, 25.0, SquaredL2(a, b), 1e-6)
	assert.InDelta(t, 25.0, DotProduct(a, b), 1e-6)
	assert.InDelta(t, 0.0, L2Distance(a, a), 1e-6)
}
