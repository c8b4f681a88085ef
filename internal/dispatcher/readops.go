package dispatcher

import (
	"context"
	"log/slog"
	"os"

	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

// ListedMemory is one memory row tagged with the corpus it came from.
type ListedMemory struct {
	store.Memory
	Scope string
}

// List fans a listing out across scope's corpora, newest-updated-first
// within each corpus (results are not globally re-sorted across corpora,
// matching the original's per-corpus-then-concatenate behavior).
func List(ctx context.Context, paths memconfig.Paths, scope, typeFilter string, limit int, logger *slog.Logger) ([]ListedMemory, error) {
	refs, err := ResolveScope(scope, paths)
	if err != nil {
		return nil, err
	}

	var all []ListedMemory
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

		mems, listErr := s.List(ctx, typeFilter, limit)
		_ = s.Close()
		if listErr != nil {
			logger.Warn("corpus list failed, skipping", "corpus", ref.Name, "err", listErr)
			continue
		}

		for _, m := range mems {
			all = append(all, ListedMemory{Memory: m, Scope: ref.Name})
		}
	}
	return all, nil
}

// CorpusStats is one corpus's aggregate stats, tagged with its name and path.
type CorpusStats struct {
	Scope string
	Path  string
	store.Stats
}

// Stats reports global and personality corpus stats always, plus project
// stats when a project corpus exists on disk (matching the original's
// memory_stats handler, which never creates a project db just to report
// zeroes for it).
func Stats(ctx context.Context, paths memconfig.Paths, logger *slog.Logger) ([]CorpusStats, error) {
	refs := []CorpusRef{
		{Name: "global", Path: paths.GlobalDB},
		{Name: "personality", Path: paths.PersonalityDB},
	}
	if p, err := memconfig.ProjectDBPath(); err == nil {
		if _, statErr := os.Stat(p); statErr == nil {
			refs = append(refs, CorpusRef{Name: "project", Path: p})
		}
	}

	var all []CorpusStats
	for _, ref := range refs {
		s, openErr := store.Open(ref.Path)
		if openErr != nil {
			logger.Warn("corpus open failed, skipping", "corpus", ref.Name, "err", openErr)
			continue
		}
		st, statsErr := s.Stats(ctx)
		_ = s.Close()
		if statsErr != nil {
			logger.Warn("corpus stats failed, skipping", "corpus", ref.Name, "err", statsErr)
			continue
		}
		all = append(all, CorpusStats{Scope: ref.Name, Path: ref.Path, Stats: st})
	}
	return all, nil
}
