package writepath

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-memoria/mcp-memoria/internal/embedworker"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

func openTestStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaveRejectsEmptyContent(t *testing.T) {
	s, path := openTestStore(t)
	q := embedworker.NewQueue(4)
	_, err := Save(context.Background(), s, path, q, 0.85, SaveInput{Type: "note", Content: ""}, discardLogger())
	assert.Error(t, err)
}

func TestSaveNewInsertsAndQueuesEmbedJob(t *testing.T) {
	s, path := openTestStore(t)
	q := embedworker.NewQueue(4)
	ctx := context.Background()

	result, err := Save(ctx, s, path, q, 0.85, SaveInput{Type: "decision", Content: "use postgres for writes", Corpus: "global"}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "new", result.Dedup)
	assert.Len(t, result.ID, 16)

	got, err := s.GetByID(ctx, result.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "use postgres for writes", got.Content)

	select {
	case job := <-q.Chan():
		assert.Equal(t, result.ID, job.MemoryID)
	default:
		t.Fatal("expected an embed job to be queued")
	}
}

func TestSaveDedupUpdatesExistingRecord(t *testing.T) {
	s, path := openTestStore(t)
	q := embedworker.NewQueue(4)
	ctx := context.Background()

	first, err := Save(ctx, s, path, q, 0.85, SaveInput{Type: "pattern", Content: "repository pattern for data access", Corpus: "global"}, discardLogger())
	require.NoError(t, err)
	<-q.Chan()

	second, err := Save(ctx, s, path, q, 0.85, SaveInput{Type: "pattern", Content: "repository pattern for data access", Tags: "go", Corpus: "global"}, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "updated", second.Dedup)

	all, err := s.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSavePersonalityScopeAppendsProjectTag(t *testing.T) {
	s, path := openTestStore(t)
	q := embedworker.NewQueue(4)
	ctx := context.Background()
	t.Setenv("MCP_PROJECT_DIR", "")
	t.Setenv("CLAUDE_CWD", "")

	result, err := Save(ctx, s, path, q, 0.85, SaveInput{
		Type: "implementation", Content: "used a worker pool", Corpus: "personality", ProjectName: "widget-service",
	}, discardLogger())
	require.NoError(t, err)

	got, err := s.GetByID(ctx, result.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Tags, "widget-service")
}

func TestSaveConversationBypassesDedupAndUpsertsBySession(t *testing.T) {
	s, path := openTestStore(t)
	q := embedworker.NewQueue(4)
	ctx := context.Background()

	first, err := Save(ctx, s, path, q, 0.85, SaveInput{Type: "conversation", Content: "turn one", SessionID: "sess-1"}, discardLogger())
	require.NoError(t, err)
	<-q.Chan()

	second, err := Save(ctx, s, path, q, 0.85, SaveInput{Type: "conversation", Content: "turn two", SessionID: "sess-1"}, discardLogger())
	require.NoError(t, err)
	<-q.Chan()

	assert.Equal(t, first.ID, second.ID)

	all, err := s.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "turn two", all[0].Content)
}

func TestDeleteRemovesMemory(t *testing.T) {
	s, path := openTestStore(t)
	q := embedworker.NewQueue(4)
	ctx := context.Background()

	result, err := Save(ctx, s, path, q, 0.85, SaveInput{Type: "note", Content: "ephemeral", Corpus: "global"}, discardLogger())
	require.NoError(t, err)

	require.NoError(t, Delete(ctx, s, result.ID))

	got, err := s.GetByID(ctx, result.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReindexQueuesOnlyUnembedded(t *testing.T) {
	s, path := openTestStore(t)
	q := embedworker.NewQueue(4)
	ctx := context.Background()

	result, err := Save(ctx, s, path, q, 0.85, SaveInput{Type: "note", Content: "needs an embedding", Corpus: "global"}, discardLogger())
	require.NoError(t, err)
	<-q.Chan() // drain the save-triggered job

	require.NoError(t, s.UpdateEmbedding(ctx, result.ID, []float32{0.1, 0.2}))

	_, err = Save(ctx, s, path, q, 0.85, SaveInput{Type: "note", Content: "still pending", Corpus: "global"}, discardLogger())
	require.NoError(t, err)
	<-q.Chan()

	count, err := Reindex(ctx, s, path, q)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	job := <-q.Chan()
	assert.Equal(t, "still pending", job.Content)
}

func TestSaveLogsWarningWhenQueueIsFull(t *testing.T) {
	s, path := openTestStore(t)
	q := embedworker.NewQueue(1)
	ctx := context.Background()

	// Fill the queue's single slot with an unrelated job so the save below
	// cannot enqueue its own.
	q.TrySend(embedworker.Job{DBPath: path, MemoryID: "occupied", Content: "x"})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := Save(ctx, s, path, q, 0.85, SaveInput{Type: "note", Content: "dropped on a full queue", Corpus: "global"}, logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "embed queue full")
}

func TestCompactAndStatsDelegateToStore(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, Compact(ctx, s))

	stats, err := Stats(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalMemories)
}
