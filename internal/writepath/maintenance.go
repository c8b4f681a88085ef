package writepath

import (
	"context"

	"github.com/mcp-memoria/mcp-memoria/internal/embedworker"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

// Delete removes a memory by id. Silent if absent, matching store.DeleteMemory.
func Delete(ctx context.Context, s *store.Store, id string) error {
	return s.DeleteMemory(ctx, id)
}

// List returns memories newest-updated-first, optionally filtered by type.
func List(ctx context.Context, s *store.Store, typeFilter string, limit int) ([]store.Memory, error) {
	return s.List(ctx, typeFilter, limit)
}

// Stats reports one corpus's aggregate counts.
func Stats(ctx context.Context, s *store.Store) (store.Stats, error) {
	return s.Stats(ctx)
}

// Compact rebuilds the FTS index and reclaims space via VACUUM.
func Compact(ctx context.Context, s *store.Store) error {
	return s.Compact(ctx)
}

// Reindex re-enqueues every memory in s that still lacks an embedding.
// Returns the number successfully queued; a full queue drops remaining jobs
// silently (the caller can run reindex again later to pick up the rest).
func Reindex(ctx context.Context, s *store.Store, dbPath string, queue *embedworker.Queue) (int, error) {
	pending, err := s.ListUnembedded(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, m := range pending {
		if queue.TrySend(embedworker.Job{DBPath: dbPath, MemoryID: m.ID, Content: m.Content}) {
			queued++
		}
	}
	return queued, nil
}
