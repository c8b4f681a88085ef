package ranker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "corpus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTemporalDecayRecentKeepsFullScore(t *testing.T) {
	now := time.Now().UTC().Format(store.TimestampLayout)
	decayed := TemporalDecay(1.0, now)
	assert.Greater(t, decayed, 0.99)
}

func TestTemporalDecayOldApproaches85Percent(t *testing.T) {
	old := time.Now().UTC().AddDate(-5, 0, 0).Format(store.TimestampLayout)
	decayed := TemporalDecay(1.0, old)
	assert.Less(t, decayed, 1.0)
	assert.Greater(t, decayed, 0.85)
}

func TestTemporalDecayUnparsableTimestampTreatedAsZeroDays(t *testing.T) {
	decayed := TemporalDecay(1.0, "not-a-timestamp")
	assert.InDelta(t, 1.0, decayed, 1e-9)
}

func TestSearchFTSEmptyQueryReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	results, err := SearchFTS(ctx, s, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFTSFindsMatch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "a", Type: "note", Content: "the quick brown fox jumps", CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))

	results, err := SearchFTS(ctx, s, "fox", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fts", results[0].Method)
	assert.Equal(t, "a", results[0].ID)
}

func TestSearchEmbeddingFiltersBelowThreshold(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "a", Type: "note", Content: "x", CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))
	require.NoError(t, s.UpdateEmbedding(ctx, "a", []float32{1, 0, 0}))

	results, err := SearchEmbedding(ctx, s, []float32{0, 1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = SearchEmbedding(ctx, s, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "embedding", results[0].Method)
}

func TestSearchEmbeddingPrefersChunkMaxOverMemory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "a", Type: "note", Content: "x", CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))
	require.NoError(t, s.UpdateEmbedding(ctx, "a", []float32{0.9, 0.1, 0}))
	require.NoError(t, s.ReplaceChunks(ctx, "a", []store.Chunk{
		{ID: "a_c0", MemoryID: "a", ChunkIndex: 0, ChunkText: "x", Embedding: []float32{1, 0, 0}},
	}))

	results, err := SearchEmbedding(ctx, s, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestSearchHybridOnlyLexicalWhenNoVector(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "a", Type: "note", Content: "searchable phrase here", CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))

	results, err := SearchHybrid(ctx, s, "searchable", nil, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fts", results[0].Method)
}

func TestSearchHybridBothSidesYieldHybridMethod(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "a", Type: "note", Content: "searchable phrase here", CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))
	require.NoError(t, s.UpdateEmbedding(ctx, "a", []float32{1, 0, 0}))

	results, err := SearchHybrid(ctx, s, "searchable", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "hybrid", results[0].Method)
}

func TestSearchHybridLimitTruncates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
			ID: id, Type: "note", Content: "shared keyword " + id, CreatedAt: store.Now(), UpdatedAt: store.Now(),
		}))
	}

	results, err := SearchHybrid(ctx, s, "shared", nil, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
