package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcp-memoria/mcp-memoria/internal/dispatcher"
	"github.com/mcp-memoria/mcp-memoria/internal/embedworker"
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/output"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
	"github.com/mcp-memoria/mcp-memoria/internal/writepath"
)

// newReindexCmd queues every memory missing an embedding, across every
// corpus by default. Queued jobs are drained by a short-lived worker that
// exits once the queue is empty, since there is no long-running server to
// hand them to from the CLI.
func newReindexCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Queue unembedded memories for (re)embedding",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()
			w := output.New(cmd.OutOrStdout())

			cfg, err := memconfig.Load()
			if err != nil {
				return err
			}
			paths, err := memconfig.NewPaths()
			if err != nil {
				return err
			}

			refs, err := dispatcher.ResolveScope(scope, paths)
			if err != nil {
				return err
			}

			embedder := buildEmbedder(ctx, cfg, false, logger)
			queue := embedworker.NewQueue(cfg.Embeddings.QueueCapacity)
			worker := embedworker.New(queue, embedder, cfg.Search.ChunkSize, cfg.Search.ChunkOverlap, cfg.Embeddings.CacheFrontSize, logger)
			worker.Start(ctx)

			for _, ref := range refs {
				s, openErr := store.Open(ref.Path)
				if openErr != nil {
					w.Warningf("%s: failed to open (%v)", ref.Name, openErr)
					continue
				}
				count, reindexErr := writepath.Reindex(ctx, s, ref.Path, queue)
				_ = s.Close()
				if reindexErr != nil {
					w.Warningf("%s: reindex failed (%v)", ref.Name, reindexErr)
					continue
				}
				w.Successf("%s: queued %d memories", ref.Name, count)
			}

			for queue.Len() > 0 {
				time.Sleep(100 * time.Millisecond)
			}
			worker.Stop()

			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "all", "Corpus scope: global, personality, project, both, all")

	return cmd
}
