// Package chunk splits long memory content into overlapping word-windows so
// each piece can be embedded and searched independently of the memory as a
// whole.
package chunk

import "strings"

// Defaults used by the embed path (spec: 400-word chunks, 80-word overlap).
const (
	DefaultSize    = 400
	DefaultOverlap = 80
)

// Split divides text into a non-empty sequence of overlapping word-windows.
//
// Tokenization splits on any run of whitespace; empty tokens are ignored. If
// the token count is at most size, the original text is returned verbatim as
// a single chunk. Otherwise the window advances by size-overlap tokens per
// step; the final window ends exactly at the last token, never crossing it.
//
// Panics-free by contract: size must be > overlap >= 0, per spec (§4.2); the
// embed worker always calls this with the validated defaults above.
func Split(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) <= size {
		return []string{text}
	}

	stride := size - overlap
	chunks := make([]string, 0, len(words)/stride+1)
	for start := 0; start < len(words); start += stride {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}
	}
	return chunks
}
