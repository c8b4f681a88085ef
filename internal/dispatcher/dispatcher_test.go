package dispatcher

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPaths(t *testing.T) memconfig.Paths {
	t.Helper()
	dir := t.TempDir()
	return memconfig.Paths{
		GlobalDB:      filepath.Join(dir, "global.db"),
		PersonalityDB: filepath.Join(dir, "personality.db"),
		DataDir:       dir,
	}
}

func TestResolveScopeGlobal(t *testing.T) {
	paths := testPaths(t)
	refs, err := ResolveScope("global", paths)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "global", refs[0].Name)
}

func TestResolveScopeAllIncludesThreeCorporaWhenProjectResolvable(t *testing.T) {
	paths := testPaths(t)
	t.Setenv("MCP_PROJECT_DIR", t.TempDir())
	refs, err := ResolveScope("all", paths)
	require.NoError(t, err)
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{"global", "personality", "project"}, names)
}

func TestResolveScopeUnknownErrors(t *testing.T) {
	paths := testPaths(t)
	_, err := ResolveScope("bogus", paths)
	assert.Error(t, err)
}

func TestResolveWriteScopeDefaultsToProject(t *testing.T) {
	paths := testPaths(t)
	t.Setenv("MCP_PROJECT_DIR", t.TempDir())

	ref, err := ResolveWriteScope("", paths)
	require.NoError(t, err)
	assert.Equal(t, "project", ref.Name)

	ref2, err := ResolveWriteScope("bogus", paths)
	require.NoError(t, err)
	assert.Equal(t, "project", ref2.Name)
}

func TestResolveWriteScopePersonality(t *testing.T) {
	paths := testPaths(t)
	ref, err := ResolveWriteScope("personality", paths)
	require.NoError(t, err)
	assert.Equal(t, "personality", ref.Name)
}

func TestSearchMergesAcrossCorporaByRelevance(t *testing.T) {
	paths := testPaths(t)
	ctx := context.Background()

	global, err := store.Open(paths.GlobalDB)
	require.NoError(t, err)
	require.NoError(t, global.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "g1", Type: "note", Content: "shared keyword in global", CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))
	require.NoError(t, global.Close())

	personality, err := store.Open(paths.PersonalityDB)
	require.NoError(t, err)
	require.NoError(t, personality.InsertOrReplaceMemory(ctx, store.Memory{
		ID: "p1", Type: "note", Content: "shared keyword in personality", CreatedAt: store.Now(), UpdatedAt: store.Now(),
	}))
	require.NoError(t, personality.Close())

	hits, err := Search(ctx, paths, nil, "all", "shared keyword", 10, discardLogger())
	require.NoError(t, err)
	require.Len(t, hits, 2)

	scopes := []string{hits[0].Scope, hits[1].Scope}
	assert.ElementsMatch(t, []string{"global", "personality"}, scopes)
}

func TestListSkipsMissingProjectCorpus(t *testing.T) {
	paths := testPaths(t)
	t.Setenv("MCP_PROJECT_DIR", filepath.Join(t.TempDir(), "does-not-exist"))

	listed, err := List(context.Background(), paths, "all", "", 10, discardLogger())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestStatsOmitsProjectWhenAbsent(t *testing.T) {
	paths := testPaths(t)
	t.Setenv("MCP_PROJECT_DIR", filepath.Join(t.TempDir(), "missing-project"))

	stats, err := Stats(context.Background(), paths, discardLogger())
	require.NoError(t, err)
	scopes := make([]string, len(stats))
	for i, s := range stats {
		scopes[i] = s.Scope
	}
	assert.ElementsMatch(t, []string{"global", "personality"}, scopes)
}
