package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcp-memoria/mcp-memoria/internal/dispatcher"
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/output"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Report per-corpus memory counts and index sizes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := memconfig.NewPaths()
			if err != nil {
				return err
			}

			w := output.New(cmd.OutOrStdout())
			stats, err := dispatcher.Stats(cmd.Context(), paths, slog.Default())
			if err != nil {
				return err
			}

			for _, s := range stats {
				w.Statusf("*", "%s (%s)", s.Scope, s.Path)
				w.Statusf(" ", "memories: %d, embedded: %d, chunks: %d, cache entries: %d",
					s.TotalMemories, s.IndexedCount, s.ChunkCount, s.CacheEntries)
				for typ, count := range s.ByType {
					w.Statusf(" ", "  %s: %d", typ, count)
				}
				w.Newline()
			}
			return nil
		},
	}
}
