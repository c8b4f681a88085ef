package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	v := []float32{1.5, -2.25, 0, 3.141592, -1e-3}
	got := Decode(Encode(v))
	require.Len(t, got, len(v))
	for i := range v {
		assert.Equal(t, v[i], got[i])
	}
}

func TestEmptyVector(t *testing.T) {
	assert.Nil(t, Decode(Encode(nil)))
	assert.Empty(t, Encode(nil))
}

func TestDecodeTrailingPartialFloatDiscarded(t *testing.T) {
	b := Encode([]float32{1, 2})
	b = append(b, 0xFF, 0xFF, 0xFF) // partial trailing float, not a full 4 bytes

	got := Decode(b)
	assert.Equal(t, []float32{1, 2}, got)
}

func TestDecodeGarbageDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Decode([]byte{1, 2, 3})
	})
}
