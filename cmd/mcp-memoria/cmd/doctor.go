package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run system diagnostics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := memconfig.Load()
			if err != nil {
				return err
			}
			paths, err := memconfig.NewPaths()
			if err != nil {
				return err
			}

			checker := preflight.New(preflight.WithVerbose(true))
			results := checker.RunAll(ctx, paths.DataDir, cfg.Embeddings.OllamaHost)
			checker.PrintResults(results)

			if checker.HasCriticalFailures(results) {
				os.Exit(1)
			}
			return nil
		},
	}
}
