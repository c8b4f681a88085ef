package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mcp-memoria/mcp-memoria/internal/dispatcher"
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/output"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
	"github.com/mcp-memoria/mcp-memoria/internal/writepath"
)

// newCompactCmd rebuilds the FTS index and runs SQLite VACUUM against every
// corpus in scope, by default all three.
func newCompactCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Rebuild the FTS index and VACUUM the corpora",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			w := output.New(cmd.OutOrStdout())

			paths, err := memconfig.NewPaths()
			if err != nil {
				return err
			}

			refs, err := dispatcher.ResolveScope(scope, paths)
			if err != nil {
				return err
			}

			for _, ref := range refs {
				s, openErr := store.Open(ref.Path)
				if openErr != nil {
					w.Warningf("%s: failed to open (%v)", ref.Name, openErr)
					continue
				}
				compactErr := writepath.Compact(ctx, s)
				_ = s.Close()
				if compactErr != nil {
					w.Warningf("%s: compact failed (%v)", ref.Name, compactErr)
					continue
				}
				w.Successf("%s: compacted", ref.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "all", "Corpus scope: global, personality, project, both, all")

	return cmd
}
