package dispatcher

import (
	"context"
	"log/slog"
	"os"
	"sort"

	"github.com/mcp-memoria/mcp-memoria/internal/embed"
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/ranker"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

// Hit is one ranked result tagged with the corpus it came from.
type Hit struct {
	ranker.Result
	Scope string
}

// Search runs a hybrid search against every corpus scope resolves to,
// computing the query embedding once and reusing it across corpora. A
// corpus that fails to open or search is logged and skipped rather than
// failing the whole request; a "project" scope corpus that doesn't exist
// yet on disk is skipped silently (no project has saved anything there).
func Search(ctx context.Context, paths memconfig.Paths, embedder embed.Embedder, scope, query string, limit int, logger *slog.Logger) ([]Hit, error) {
	refs, err := ResolveScope(scope, paths)
	if err != nil {
		return nil, err
	}

	var queryVec []float32
	if embedder != nil && embedder.Available(ctx) {
		if v, embedErr := embedder.Embed(ctx, query); embedErr == nil {
			queryVec = v
		} else {
			logger.Warn("query embedding failed, falling back to lexical-only search", "err", embedErr)
		}
	}

	var all []Hit
	for _, ref := range refs {
		if ref.Name == "project" {
			if _, statErr := os.Stat(ref.Path); statErr != nil {
				continue
			}
		}

		s, openErr := store.Open(ref.Path)
		if openErr != nil {
			logger.Warn("corpus open failed, skipping", "corpus", ref.Name, "err", openErr)
			continue
		}

		results, searchErr := ranker.SearchHybrid(ctx, s, query, queryVec, limit)
		_ = s.Close()
		if searchErr != nil {
			logger.Warn("corpus search failed, skipping", "corpus", ref.Name, "err", searchErr)
			continue
		}

		for _, r := range results {
			all = append(all, Hit{Result: r, Scope: ref.Name})
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Relevance > all[j].Relevance })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
