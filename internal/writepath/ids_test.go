package writepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIDIsSixteenHexChars(t *testing.T) {
	id := generateID("note", "some content")
	assert.Len(t, id, 16)
	for _, r := range id {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

func TestSessionIDIsDeterministic(t *testing.T) {
	a := SessionID("sess-abc")
	b := SessionID("sess-abc")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestSessionIDDiffersPerSession(t *testing.T) {
	assert.NotEqual(t, SessionID("sess-1"), SessionID("sess-2"))
}
