// Package dedup finds near-duplicate memories before a write lands, so a
// note re-saved with small edits updates the existing record instead of
// accumulating a pile of near-copies.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcp-memoria/mcp-memoria/internal/similarity"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

// DefaultThreshold is the Jaccard similarity floor used by the write path.
const DefaultThreshold = 0.85

// candidateTokens is how many leading whitespace tokens seed the lexical
// narrowing query.
const candidateTokens = 20

// minTokenLength excludes short, low-signal tokens (articles, short verbs)
// from the narrowing query.
const minTokenLength = 2

// candidateLimit bounds how many FTS candidates are Jaccard-scored.
const candidateLimit = 10

// FindDuplicate looks for a near-duplicate of content among existing
// memories of the same type. Returns the matching id, or "" if none found.
//
// Phase one is an exact (type, content) match. Phase two takes the first 20
// whitespace tokens of content, drops tokens of length <= 2, and — if any
// survive — runs a lexical OR-query against the FTS index, Jaccard-scoring
// up to 10 candidates and returning the first at or above threshold.
func FindDuplicate(ctx context.Context, s *store.Store, content, typ string, threshold float64) (string, error) {
	if id, err := s.ExactMatch(ctx, typ, content); err != nil {
		return "", err
	} else if id != "" {
		return id, nil
	}

	terms := narrowingTerms(content)
	if len(terms) == 0 {
		return "", nil
	}

	query := buildORQuery(terms)
	hits, err := s.MatchFTS(ctx, query, typ, candidateLimit)
	if err != nil {
		return "", err
	}

	for _, h := range hits {
		if similarity.Jaccard(content, h.Memory.Content) >= threshold {
			return h.Memory.ID, nil
		}
	}
	return "", nil
}

func narrowingTerms(content string) []string {
	fields := strings.Fields(content)
	if len(fields) > candidateTokens {
		fields = fields[:candidateTokens]
	}

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > minTokenLength {
			terms = append(terms, f)
		}
	}
	return terms
}

func buildORQuery(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(quoted, " OR ")
}
