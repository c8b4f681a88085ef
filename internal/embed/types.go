// Package embed defines the Embedder capability the core treats as an
// opaque external resource, plus the implementations this repo ships:
// a network-backed Ollama client and a dependency-free static fallback.
package embed

import (
	"context"
	"math"
	"time"
)

// DefaultTimeout bounds a single embed call.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the retry budget for a transient Ollama failure.
const DefaultMaxRetries = 3

// StaticDimensions is the embedding dimension produced by StaticEmbedder.
const StaticDimensions = 256

// Embedder generates vector embeddings for text. Implementations are
// deterministic for a given model, blocking/CPU-heavy, and not required to
// be safe for unsynchronized concurrent use — the core serializes access
// with a semaphore (see WithSingleFlight).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Available(ctx context.Context) bool
	Close() error
}

// normalizeVector scales v to unit length, returning it unchanged if it is
// already the zero vector.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
