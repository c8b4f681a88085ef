package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextVerbatim(t *testing.T) {
	text := "hello world foo bar"
	got := Split(text, DefaultSize, DefaultOverlap)
	require.Len(t, got, 1)
	assert.Equal(t, text, got[0])
}

func TestSplitWindowing(t *testing.T) {
	got := Split("a b c d e f g h i j", 4, 2)
	assert.Equal(t, []string{"a b c d", "c d e f", "e f g h", "g h i j"}, got)
}

func TestSplitExactChunkSize(t *testing.T) {
	got := Split("a b c d", 4, 2)
	assert.Len(t, got, 1)
}

func TestSplitLastWindowEndsAtLastToken(t *testing.T) {
	got := Split("a b c d e f g h i", 4, 2)
	last := got[len(got)-1]
	words := strings.Fields(last)
	assert.Equal(t, "i", words[len(words)-1])
}

func TestSplitNeverEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "one", "a b c d e f g h i j k"} {
		got := Split(text, 4, 2)
		assert.NotEmpty(t, got)
	}
}

func TestSplitConsecutiveOverlap(t *testing.T) {
	got := Split("a b c d e f g h i j k l", 5, 2)
	for i := 0; i+1 < len(got); i++ {
		a := strings.Fields(got[i])
		b := strings.Fields(got[i+1])
		// last `overlap` tokens of chunk i equal first `overlap` tokens of chunk i+1
		assert.Equal(t, a[len(a)-2:], b[:2])
	}
}
