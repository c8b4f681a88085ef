package dedup

import (
	"context"
	"path/filepath"
	"testing"

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

func TestFindDuplicateExactMatch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "a", Type: "note", Content: "the exact same content", CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))

	id, err := FindDuplicate(ctx, s, "the exact same content", "note", DefaultThreshold)
	require.NoError(t, err)
	require.Equal(t, "a", id)
}

func TestFindDuplicateLexicalNear(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "a", Type: "note",
		Content:   "the project uses postgres for persistent storage and redis for caching",
		CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))

	id, err := FindDuplicate(ctx, s,
		"the project uses postgres for persistent storage and redis for caching today", "note", DefaultThreshold)
	require.NoError(t, err)
	require.Equal(t, "a", id)
}

func TestFindDuplicateNoneBelowThreshold(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "a", Type: "note", Content: "completely different subject matter entirely",
		CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))

	id, err := FindDuplicate(ctx, s, "something about gardening and plants", "note", DefaultThreshold)
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestFindDuplicateAllShortTokensReturnsNone(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := FindDuplicate(ctx, s, "a an is to ok", "note", DefaultThreshold)
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestFindDuplicateRespectsTypeScope(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "a", Type: "todo", Content: "identical content across types", CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))

	id, err := FindDuplicate(ctx, s, "identical content across types", "note", DefaultThreshold)
	require.NoError(t, err)
	require.Empty(t, id)
}
