package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndGetByID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	m := Memory{ID: "abc123", Type: "note", Content: "remember the thing", Tags: "x,y", CreatedAt: Now(), UpdatedAt: Now()}
	require.NoError(t, s.InsertOrReplaceMemory(ctx, m))

	got, err := s.GetByID(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "remember the thing", got.Content)
	require.Nil(t, got.Embedding)
}

func TestGetByIDMissing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	got, err := s.GetByID(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpdateContentTagsClearsEmbedding(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	m := Memory{ID: "abc", Type: "note", Content: "v1", CreatedAt: Now(), UpdatedAt: Now()}
	require.NoError(t, s.InsertOrReplaceMemory(ctx, m))
	require.NoError(t, s.UpdateEmbedding(ctx, "abc", []float32{1, 2, 3}))

	require.NoError(t, s.UpdateContentTags(ctx, "abc", "v2", "tagged", Now()))

	got, err := s.GetByID(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "v2", got.Content)
	require.Equal(t, "tagged", got.Tags)
	require.Nil(t, got.Embedding)
}

func TestDeleteCascadesChunksAndFTS(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	m := Memory{ID: "abc", Type: "note", Content: "unique findable token", CreatedAt: Now(), UpdatedAt: Now()}
	require.NoError(t, s.InsertOrReplaceMemory(ctx, m))
	require.NoError(t, s.ReplaceChunks(ctx, "abc", []Chunk{{ID: "abc_c0", MemoryID: "abc", ChunkIndex: 0, ChunkText: "unique"}}))

	require.NoError(t, s.DeleteMemory(ctx, "abc"))

	got, err := s.GetByID(ctx, "abc")
	require.NoError(t, err)
	require.Nil(t, got)

	hits, err := s.MatchFTS(ctx, `"unique"`, "", 10)
	require.NoError(t, err)
	require.Empty(t, hits)

	chunks, _, err := s.ChunksWithEmbedding(ctx)
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestMatchFTSFindsIndexedContent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "a", Type: "note", Content: "the quick brown fox", CreatedAt: Now(), UpdatedAt: Now()}))
	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "b", Type: "note", Content: "completely unrelated text", CreatedAt: Now(), UpdatedAt: Now()}))

	hits, err := s.MatchFTS(ctx, `"fox"`, "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "a", hits[0].Memory.ID)
}

func TestMatchFTSRespectsTypeFilter(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "a", Type: "note", Content: "shared keyword", CreatedAt: Now(), UpdatedAt: Now()}))
	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "b", Type: "todo", Content: "shared keyword", CreatedAt: Now(), UpdatedAt: Now()}))

	hits, err := s.MatchFTS(ctx, `"shared"`, "todo", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "b", hits[0].Memory.ID)
}

func TestListOrdersByUpdatedAtDesc(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "a", Type: "note", Content: "first", CreatedAt: "2026-01-01 00:00:00", UpdatedAt: "2026-01-01 00:00:00"}))
	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "b", Type: "note", Content: "second", CreatedAt: "2026-01-02 00:00:00", UpdatedAt: "2026-01-02 00:00:00"}))

	got, err := s.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].ID)
}

func TestListUnembedded(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "a", Type: "note", Content: "x", CreatedAt: Now(), UpdatedAt: Now()}))
	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "b", Type: "note", Content: "y", CreatedAt: Now(), UpdatedAt: Now()}))
	require.NoError(t, s.UpdateEmbedding(ctx, "a", []float32{1, 2}))

	got, err := s.ListUnembedded(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].ID)
}

func TestMemoriesWithEmbeddingAndChunksWithEmbedding(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "a", Type: "note", Content: "x", CreatedAt: Now(), UpdatedAt: Now()}))
	require.NoError(t, s.UpdateEmbedding(ctx, "a", []float32{1, 2, 3}))
	require.NoError(t, s.ReplaceChunks(ctx, "a", []Chunk{{ID: "a_c0", MemoryID: "a", ChunkIndex: 0, ChunkText: "x", Embedding: []float32{4, 5}}}))

	mems, err := s.MemoriesWithEmbedding(ctx)
	require.NoError(t, err)
	require.Len(t, mems, 1)

	chunks, parents, err := s.ChunksWithEmbedding(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Len(t, parents, 1)
	require.Equal(t, "a", parents[0].ID)
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.CacheLookup(ctx, "hash1", "model1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.CacheStore(ctx, "hash1", "model1", []float32{0.1, 0.2}))

	v, ok, err := s.CacheLookup(ctx, "hash1", "model1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []float32{0.1, 0.2}, v)
}

func TestStatsAggregatesCounts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "a", Type: "note", Content: "x", CreatedAt: Now(), UpdatedAt: Now()}))
	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "b", Type: "todo", Content: "y", CreatedAt: Now(), UpdatedAt: Now()}))
	require.NoError(t, s.UpdateEmbedding(ctx, "a", []float32{1}))
	require.NoError(t, s.CacheStore(ctx, "h", "m", []float32{1}))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, st.TotalMemories)
	require.Equal(t, 1, st.IndexedCount)
	require.Equal(t, 1, st.CacheEntries)
	require.Equal(t, 1, st.ByType["note"])
	require.Equal(t, 1, st.ByType["todo"])
}

func TestCompactRebuildsFTSAndReclaimsSpace(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, Memory{ID: "a", Type: "note", Content: "searchable text", CreatedAt: Now(), UpdatedAt: Now()}))
	require.NoError(t, s.Compact(ctx))

	hits, err := s.MatchFTS(ctx, `"searchable"`, "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}
