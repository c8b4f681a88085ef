package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-memoria/mcp-memoria/internal/embedworker"
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
	"github.com/mcp-memoria/mcp-memoria/internal/writepath"
)

func TestReindexCmdQueuesUnembeddedMemories(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	paths, err := memconfig.NewPaths()
	require.NoError(t, err)

	s, err := store.Open(paths.GlobalDB)
	require.NoError(t, err)
	q := embedworker.NewQueue(4)
	_, err = writepath.Save(context.Background(), s, paths.GlobalDB, q, 0.85, writepath.SaveInput{
		Type: "note", Content: "unembedded memory", Corpus: "global",
	}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	cmd := newReindexCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--scope", "global"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "global: queued 1 memories")
}
