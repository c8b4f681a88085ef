// Package writepath implements the mutating and maintenance operations over
// a single corpus store: save (with dedup and personality-scope project
// tagging), delete, list, stats, compact, and reindex. Scope resolution
// across corpora is the dispatcher's concern; writepath always operates on
// one already-opened store and the on-disk path the embed worker needs to
// reopen it from.
package writepath

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcp-memoria/mcp-memoria/internal/dedup"
	"github.com/mcp-memoria/mcp-memoria/internal/embedworker"
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/merrors"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

// SaveInput carries a save request. ProjectName is only consulted when
// Corpus is "personality"; empty means derive it from the environment.
type SaveInput struct {
	Type        string
	Content     string
	Tags        string
	Corpus      string
	ProjectName string
	SessionID   string // required when Type == "conversation"
}

// SaveResult reports the id that was written and whether it was a fresh
// insert or a dedup-driven update of an existing record.
type SaveResult struct {
	ID    string
	Dedup string // "new" | "updated"
}

// Save writes a memory to s, applying dedup (unless Type is "conversation",
// which instead upserts by a session-derived id) and the personality-scope
// project tag, then enqueues an embed job for it on queue via a
// non-blocking send. A full queue drops the job; logger records it so the
// drop isn't silent, since the next reindex is the only way to recover it.
func Save(ctx context.Context, s *store.Store, dbPath string, queue *embedworker.Queue, dedupThreshold float64, in SaveInput, logger *slog.Logger) (SaveResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if in.Content == "" {
		return SaveResult{}, merrors.New(merrors.ErrCodeEmptyContent, "content must not be empty", nil)
	}

	tags := in.Tags
	if in.Corpus == "personality" {
		tags = appendProjectTag(tags, memconfig.ProjectName(in.ProjectName))
	}

	var result SaveResult
	if in.Type == "conversation" {
		id := SessionID(in.SessionID)
		now := store.Now()
		if err := s.InsertOrReplaceMemory(ctx, store.Memory{
			ID: id, Type: in.Type, Content: in.Content, Tags: tags, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return SaveResult{}, err
		}
		result = SaveResult{ID: id, Dedup: "new"}
	} else {
		existingID, err := dedup.FindDuplicate(ctx, s, in.Content, in.Type, dedupThreshold)
		if err != nil {
			return SaveResult{}, err
		}
		if existingID != "" {
			if err := s.UpdateContentTags(ctx, existingID, in.Content, tags, store.Now()); err != nil {
				return SaveResult{}, err
			}
			result = SaveResult{ID: existingID, Dedup: "updated"}
		} else {
			id := generateID(in.Type, in.Content)
			now := store.Now()
			if err := s.InsertOrReplaceMemory(ctx, store.Memory{
				ID: id, Type: in.Type, Content: in.Content, Tags: tags, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return SaveResult{}, err
			}
			result = SaveResult{ID: id, Dedup: "new"}
		}
	}

	if !queue.TrySend(embedworker.Job{DBPath: dbPath, MemoryID: result.ID, Content: in.Content}) {
		logger.Warn("embed queue full, dropping job", "id", result.ID, "db", dbPath)
	}
	return result, nil
}

// appendProjectTag adds name to the comma-joined tags string if it isn't
// already present as a substring, mirroring the original implementation's
// tagging check exactly (a plain substring test, not token-aware).
func appendProjectTag(tags, name string) string {
	if name == "" || strings.Contains(tags, name) {
		return tags
	}
	if tags == "" {
		return name
	}
	return tags + "," + name
}
