package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcp-memoria/mcp-memoria/internal/embed"
	"github.com/mcp-memoria/mcp-memoria/internal/embedworker"
	"github.com/mcp-memoria/mcp-memoria/internal/logging"
	"github.com/mcp-memoria/mcp-memoria/internal/mcpserver"
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
)

// newServeCmd starts the MCP server over stdio. Per the MCP stdio
// transport, stdout carries the JSON-RPC stream exclusively: all
// diagnostic output goes to the log file, never to stdout or stderr.
func newServeCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), offline)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Use the static embedder, skipping Ollama entirely")

	return cmd
}

func runServe(ctx context.Context, offline bool) error {
	cleanup, err := logging.SetupMCPMode()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()

	logger := slog.Default()

	cfg, err := memconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	paths, err := memconfig.NewPaths()
	if err != nil {
		return fmt.Errorf("failed to resolve data paths: %w", err)
	}

	embedder := buildEmbedder(ctx, cfg, offline, logger)

	queue := embedworker.NewQueue(cfg.Embeddings.QueueCapacity)
	worker := embedworker.New(queue, embedder, cfg.Search.ChunkSize, cfg.Search.ChunkOverlap, cfg.Embeddings.CacheFrontSize, logger)
	worker.Start(ctx)
	defer worker.Stop()

	server := mcpserver.New(paths, cfg, embedder, queue, logger)
	defer func() { _ = server.Close() }()

	return server.Serve(ctx, "stdio")
}

// buildEmbedder constructs the embedder the server uses for query and save
// embedding. Ollama is preferred; a failed connection or --offline falls
// back to the dependency-free static embedder rather than failing serve
// outright, so search keeps working without Ollama.
func buildEmbedder(ctx context.Context, cfg memconfig.Config, offline bool, logger *slog.Logger) embed.Embedder {
	if offline {
		logger.Info("offline mode: using static embedder")
		return embed.NewStaticEmbedder()
	}

	ollamaCfg := embed.DefaultOllamaConfig()
	ollamaCfg.Host = cfg.Embeddings.OllamaHost
	ollamaCfg.Model = cfg.Embeddings.OllamaModel

	ollama, err := embed.NewOllamaEmbedder(ctx, ollamaCfg)
	if err != nil {
		logger.Warn("Ollama unavailable, falling back to static embedder", slog.String("error", err.Error()))
		return embed.NewStaticEmbedder()
	}

	logger.Info("using Ollama embedder", slog.String("host", ollamaCfg.Host), slog.String("model", ollamaCfg.Model))
	return embed.WithSingleFlight(ollama)
}
