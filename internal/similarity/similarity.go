// Package similarity provides the two scoring primitives the ranker and the
// dedup detector build on: cosine similarity over dense vectors and Jaccard
// similarity over token sets.
package similarity

import (
	"math"
	"strings"
)

// Cosine returns the cosine similarity between a and b. It returns 0 if
// either vector is empty, the lengths differ, or the denominator is smaller
// than 1e-8 (near-zero vectors carry no directional information).
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom < 1e-8 {
		return 0
	}
	return dot / denom
}

// Jaccard returns the Jaccard similarity of the whitespace-separated,
// lowercased token sets of a and b: |intersection| / |union|. Returns 0 if
// either side tokenizes to an empty set.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
