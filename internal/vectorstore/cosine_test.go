package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{5, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-3, 0}), 1e-9)
}

func TestCosineZeroMagnitude(t *testing.T) {
	assert.Zero(t, Cosine([]float64{0, 0, 0}, []float64{1, 2, 3}))
	assert.Zero(t, Cosine([]float64{1, 2, 3}, []float64{0, 0, 0}))
	assert.Zero(t, Cosine(nil, []float64{1}))
}

func TestCosineMismatchedLengths(t *testing.T) {
	// Compares over the shorter prefix.
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{1, 0, 0}), 1e-9)
}
