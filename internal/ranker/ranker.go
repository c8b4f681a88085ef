// Package ranker implements lexical, semantic, and hybrid memory search
// with temporal decay, operating over a single corpus store.
package ranker

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcp-memoria/mcp-memoria/internal/similarity"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

// Tunables (spec §4.8).
const (
	DecayStrength  = 0.15
	MinSemanticSim = 0.3
	VectorWeight   = 0.7
	TextWeight     = 0.3
)

// Result is one ranked hit. Scope is left blank here — the dispatcher fills
// it in when merging results across corpora.
type Result struct {
	ID        string
	Type      string
	Content   string
	Tags      string
	CreatedAt string
	UpdatedAt string
	Relevance float64
	Method    string // "fts" | "embedding" | "embedding-chunk" | "hybrid"
}

// SearchFTS runs a lexical search. Tokenizes query on whitespace, discarding
// empties; returns empty if no tokens survive.
func SearchFTS(ctx context.Context, s *store.Store, query string, limit int) ([]Result, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	matchQuery := buildORQuery(tokens)
	hits, err := s.MatchFTS(ctx, matchQuery, "", limit*3)
	if err != nil {
		return nil, fmt.Errorf("search_fts: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		normalized := math.Abs(h.Score) / (math.Abs(h.Score) + 1)
		score := TemporalDecay(normalized, h.Memory.CreatedAt)
		results = append(results, resultFromMemory(h.Memory, score, "fts"))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// SearchEmbedding runs a semantic search against a query vector, scanning
// memory-level and chunk-level embeddings and keeping the max score seen
// per memory id.
func SearchEmbedding(ctx context.Context, s *store.Store, queryVec []float32, limit int) ([]Result, error) {
	acc := make(map[string]Result)

	memories, err := s.MemoriesWithEmbedding(ctx)
	if err != nil {
		return nil, fmt.Errorf("search_embedding: %w", err)
	}
	for _, m := range memories {
		accumulate(acc, m, queryVec, "embedding")
	}

	chunks, parents, err := s.ChunksWithEmbedding(ctx)
	if err != nil {
		return nil, fmt.Errorf("search_embedding: %w", err)
	}
	for i, c := range chunks {
		accumulateChunk(acc, parents[i], c, queryVec)
	}

	results := make([]Result, 0, len(acc))
	for _, r := range acc {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func accumulate(acc map[string]Result, m store.Memory, queryVec []float32, method string) {
	cos := similarity.Cosine(queryVec, m.Embedding)
	if cos <= MinSemanticSim {
		return
	}
	score := TemporalDecay(cos, m.CreatedAt)
	existing, ok := acc[m.ID]
	if !ok || score > existing.Relevance {
		acc[m.ID] = resultFromMemory(m, score, method)
	}
}

func accumulateChunk(acc map[string]Result, parent store.Memory, c store.Chunk, queryVec []float32) {
	cos := similarity.Cosine(queryVec, c.Embedding)
	if cos <= MinSemanticSim {
		return
	}
	score := TemporalDecay(cos, parent.CreatedAt)
	existing, ok := acc[parent.ID]
	if !ok {
		acc[parent.ID] = resultFromMemory(parent, score, "embedding-chunk")
		return
	}
	if score > existing.Relevance {
		existing.Relevance = score
		acc[parent.ID] = existing
	}
}

type hybridEntry struct {
	ftsScore float64
	embScore float64
	row      Result
	hasFTS   bool
	hasEmb   bool
}

// SearchHybrid merges lexical and (when a query vector is supplied)
// semantic results, weighting 0.7 semantic / 0.3 lexical, then applies
// temporal decay to the blended raw score.
func SearchHybrid(ctx context.Context, s *store.Store, query string, queryVec []float32, limit int) ([]Result, error) {
	var ftsResults, embResults []Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := SearchFTS(gctx, s, query, limit*3)
		if err != nil {
			return err
		}
		ftsResults = r
		return nil
	})
	if queryVec != nil {
		g.Go(func() error {
			r, err := SearchEmbedding(gctx, s, queryVec, limit*3)
			if err != nil {
				return err
			}
			embResults = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search_hybrid: %w", err)
	}

	merged := make(map[string]*hybridEntry)
	for _, r := range ftsResults {
		e := merged[r.ID]
		if e == nil {
			e = &hybridEntry{row: r}
			merged[r.ID] = e
		}
		if r.Relevance > e.ftsScore {
			e.ftsScore = r.Relevance
		}
		e.hasFTS = true
	}
	for _, r := range embResults {
		e := merged[r.ID]
		if e == nil {
			e = &hybridEntry{}
			merged[r.ID] = e
		}
		if r.Relevance > e.embScore {
			e.embScore = r.Relevance
		}
		e.row = r // prefer the semantic row's metadata on conflict
		e.hasEmb = true
	}

	results := make([]Result, 0, len(merged))
	for _, e := range merged {
		raw := VectorWeight*e.embScore + TextWeight*e.ftsScore
		final := TemporalDecay(raw, e.row.CreatedAt)
		final = math.Round(final*10000) / 10000

		method := e.row.Method
		if e.hasFTS && e.hasEmb {
			method = "hybrid"
		}

		row := e.row
		row.Relevance = final
		row.Method = method
		results = append(results, row)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// TemporalDecay applies the spec's recency weighting: a brand-new record
// keeps 100% of score, an infinitely old one asymptotes to 85%.
func TemporalDecay(score float64, createdAt string) float64 {
	days := daysOld(createdAt)
	recency := 1 / (1 + math.Log(1+days))
	return score * (1 - DecayStrength + DecayStrength*recency)
}

func daysOld(createdAt string) float64 {
	t, err := time.Parse(store.TimestampLayout, createdAt)
	if err != nil {
		t, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return 0
		}
	}
	d := time.Since(t).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

func buildORQuery(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(quoted, " OR ")
}

func resultFromMemory(m store.Memory, relevance float64, method string) Result {
	return Result{
		ID: m.ID, Type: m.Type, Content: m.Content, Tags: m.Tags,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
		Relevance: relevance, Method: method,
	}
}
