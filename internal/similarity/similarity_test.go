package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineIdentical(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0, 0}, []float32{1, 0, 0}), 1e-9)
}

func TestCosineOrthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosineLengthMismatch(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
}

func TestCosineEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Cosine(nil, []float32{1}))
	assert.Equal(t, 0.0, Cosine([]float32{1}, nil))
}

func TestCosineNearZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{0, 0, 0}, []float32{1, 2, 3}))
}

func TestJaccardIdentical(t *testing.T) {
	assert.InDelta(t, 1.0, Jaccard("hello world", "hello world"), 1e-9)
}

func TestJaccardPartialOverlap(t *testing.T) {
	assert.InDelta(t, 0.5, Jaccard("hello world foo", "hello world bar"), 1e-9)
}

func TestJaccardDisjoint(t *testing.T) {
	assert.Less(t, Jaccard("alpha beta", "gamma delta"), 0.01)
}

func TestJaccardCaseInsensitive(t *testing.T) {
	assert.InDelta(t, 1.0, Jaccard("Hello World", "hello world"), 1e-9)
}

func TestJaccardEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard("", "anything"))
	assert.Equal(t, 0.0, Jaccard("anything", ""))
	assert.Equal(t, 0.0, Jaccard("   ", "anything"))
}
