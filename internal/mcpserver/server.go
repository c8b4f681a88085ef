// Package mcpserver bridges AI clients (Claude Code, Cursor) to the
// three-corpus memory store over the Model Context Protocol: it registers
// the save/search/context/list/stats/delete/reindex/compact tools, resolves
// each call's scope to one or more corpora via the dispatcher, and delegates
// mutations to writepath.
package mcpserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcp-memoria/mcp-memoria/internal/dispatcher"
	"github.com/mcp-memoria/mcp-memoria/internal/embed"
	"github.com/mcp-memoria/mcp-memoria/internal/embedworker"
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/merrors"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
	"github.com/mcp-memoria/mcp-memoria/internal/writepath"
	"github.com/mcp-memoria/mcp-memoria/pkg/version"
)

// Server is the MCP server for mcp-memoria.
type Server struct {
	mcp      *mcp.Server
	paths    memconfig.Paths
	cfg      memconfig.Config
	embedder embed.Embedder
	queue    *embedworker.Queue
	logger   *slog.Logger
}

// New constructs a Server and registers its tools. embedder may be nil, in
// which case saves are still queued but the worker will skip embedding and
// searches fall back to lexical-only ranking.
func New(paths memconfig.Paths, cfg memconfig.Config, embedder embed.Embedder, queue *embedworker.Queue, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		paths:    paths,
		cfg:      cfg,
		embedder: embedder,
		queue:    queue,
		logger:   logger,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "mcp-memoria",
		Version: version.Version,
	}, nil)

	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.logger.Debug("registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_save",
		Description: "Save a memory to the global, personality, or project corpus. Near-duplicate content is merged into the existing record instead of creating a new one.",
	}, s.mcpSaveHandler)
	s.logger.Debug("registered tool", slog.String("name", "memory_save"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_search",
		Description: "Search memories with hybrid lexical and semantic ranking across one or more corpora. Use scope=both (default) to search global and project memory together.",
	}, s.mcpSearchHandler)
	s.logger.Debug("registered tool", slog.String("name", "memory_search"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_context",
		Description: "Pull the most relevant memories across every corpus for the current conversation context. Always searches scope=all and returns at most 8 results.",
	}, s.mcpContextHandler)
	s.logger.Debug("registered tool", slog.String("name", "memory_context"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_list",
		Description: "List memories, optionally filtered by type, across one or more corpora.",
	}, s.mcpListHandler)
	s.logger.Debug("registered tool", slog.String("name", "memory_list"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_stats",
		Description: "Report per-corpus memory counts, embedding coverage, and chunk/cache sizes.",
	}, s.mcpStatsHandler)
	s.logger.Debug("registered tool", slog.String("name", "memory_stats"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_delete",
		Description: "Delete a memory by id from a single corpus.",
	}, s.mcpDeleteHandler)
	s.logger.Debug("registered tool", slog.String("name", "memory_delete"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_reindex",
		Description: "Queue every memory in a corpus that is missing an embedding for (re)embedding.",
	}, s.mcpReindexHandler)
	s.logger.Debug("registered tool", slog.String("name", "memory_reindex"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_compact",
		Description: "Rebuild the FTS index and run SQLite VACUUM against a corpus.",
	}, s.mcpCompactHandler)
	s.logger.Debug("registered tool", slog.String("name", "memory_compact"))

	s.logger.Info("MCP tools registered", slog.Int("count", 8))
}

func (s *Server) openWriteScope(scope string) (*store.Store, dispatcher.CorpusRef, error) {
	ref, err := dispatcher.ResolveWriteScope(scope, s.paths)
	if err != nil {
		return nil, ref, err
	}
	st, err := store.Open(ref.Path)
	if err != nil {
		return nil, ref, merrors.Wrap(merrors.ErrCodeStoreOpen, err)
	}
	return st, ref, nil
}

func (s *Server) mcpSaveHandler(ctx context.Context, _ *mcp.CallToolRequest, input SaveInput) (*mcp.CallToolResult, SaveOutput, error) {
	if input.Content == "" {
		return nil, SaveOutput{}, NewInvalidParamsError("content is required")
	}
	scope := input.Scope
	if scope == "" {
		scope = "project"
	}

	st, ref, err := s.openWriteScope(scope)
	if err != nil {
		return nil, SaveOutput{}, MapError(err)
	}
	defer st.Close()

	result, err := writepath.Save(ctx, st, ref.Path, s.queue, s.cfg.Dedup.Threshold, writepath.SaveInput{
		Type:        input.Type,
		Content:     input.Content,
		Tags:        input.Tags,
		Corpus:      ref.Name,
		ProjectName: input.ProjectName,
		SessionID:   input.SessionID,
	}, s.logger)
	if err != nil {
		return nil, SaveOutput{}, MapError(err)
	}

	output := SaveOutput{ID: result.ID, Dedup: result.Dedup, Scope: ref.Name}
	output.Markdown = formatSaveResult(output)
	return nil, output, nil
}

func formatSaveResult(o SaveOutput) string {
	verb := "Saved"
	if o.Dedup == "updated" {
		verb = "Merged into existing"
	}
	return verb + " memory `" + o.ID + "` in the " + o.Scope + " corpus."
}

func (s *Server) mcpSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query is required")
	}
	scope := input.Scope
	if scope == "" {
		scope = "both"
	}
	limit := clampLimit(input.Limit, 10, 1, 50)

	hits, err := dispatcher.Search(ctx, s.paths, s.embedder, scope, input.Query, limit, s.logger)
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}

	output := SearchOutput{Results: make([]SearchHitOutput, 0, len(hits))}
	for _, h := range hits {
		output.Results = append(output.Results, toSearchHitOutput(h))
	}
	output.Markdown = formatSearchResults(input.Query, output.Results)
	return nil, output, nil
}

func (s *Server) mcpContextHandler(ctx context.Context, _ *mcp.CallToolRequest, input ContextInput) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query is required")
	}

	hits, err := dispatcher.Search(ctx, s.paths, s.embedder, "all", input.Query, 8, s.logger)
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}

	output := SearchOutput{Results: make([]SearchHitOutput, 0, len(hits))}
	for _, h := range hits {
		output.Results = append(output.Results, toSearchHitOutput(h))
	}
	output.Markdown = formatSearchResults(input.Query, output.Results)
	return nil, output, nil
}

func (s *Server) mcpListHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	scope := input.Scope
	if scope == "" {
		scope = "all"
	}
	limit := clampLimit(input.Limit, 20, 1, 200)

	listed, err := dispatcher.List(ctx, s.paths, scope, input.Type, limit, s.logger)
	if err != nil {
		return nil, ListOutput{}, MapError(err)
	}

	output := ListOutput{Memories: make([]ListedMemoryOutput, 0, len(listed))}
	for _, m := range listed {
		output.Memories = append(output.Memories, toListedMemoryOutput(m.Memory, m.Scope))
	}
	output.Markdown = formatListedMemories(output.Memories)
	return nil, output, nil
}

func (s *Server) mcpStatsHandler(ctx context.Context, _ *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := dispatcher.Stats(ctx, s.paths, s.logger)
	if err != nil {
		return nil, StatsOutput{}, MapError(err)
	}

	output := StatsOutput{Corpora: make([]CorpusStatsOutput, 0, len(stats))}
	for _, c := range stats {
		output.Corpora = append(output.Corpora, CorpusStatsOutput{
			Scope:         c.Scope,
			Path:          c.Path,
			TotalMemories: c.TotalMemories,
			IndexedCount:  c.IndexedCount,
			ChunkCount:    c.ChunkCount,
			CacheEntries:  c.CacheEntries,
			ByType:        c.ByType,
		})
	}
	output.Markdown = formatStats(output.Corpora)
	return nil, output, nil
}

func (s *Server) mcpDeleteHandler(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, NewInvalidParamsError("id is required")
	}
	scope := input.Scope
	if scope == "" {
		scope = "project"
	}

	st, _, err := s.openWriteScope(scope)
	if err != nil {
		return nil, DeleteOutput{}, MapError(err)
	}
	defer st.Close()

	if err := writepath.Delete(ctx, st, input.ID); err != nil {
		return nil, DeleteOutput{}, MapError(err)
	}
	return nil, DeleteOutput{Deleted: true}, nil
}

func (s *Server) mcpReindexHandler(ctx context.Context, _ *mcp.CallToolRequest, input ReindexInput) (*mcp.CallToolResult, ReindexOutput, error) {
	scope := input.Scope
	if scope == "" {
		scope = "all"
	}

	refs, err := dispatcher.ResolveScope(scope, s.paths)
	if err != nil {
		return nil, ReindexOutput{}, MapError(err)
	}

	output := ReindexOutput{QueuedPerCorpus: make(map[string]int, len(refs))}
	for _, ref := range refs {
		st, openErr := store.Open(ref.Path)
		if openErr != nil {
			s.logger.Warn("corpus open failed, skipping", "corpus", ref.Name, "err", openErr)
			continue
		}
		count, reindexErr := writepath.Reindex(ctx, st, ref.Path, s.queue)
		_ = st.Close()
		if reindexErr != nil {
			s.logger.Warn("corpus reindex failed, skipping", "corpus", ref.Name, "err", reindexErr)
			continue
		}
		output.QueuedPerCorpus[ref.Name] = count
		output.Queued += count
	}
	return nil, output, nil
}

func (s *Server) mcpCompactHandler(ctx context.Context, _ *mcp.CallToolRequest, input CompactInput) (*mcp.CallToolResult, CompactOutput, error) {
	scope := input.Scope
	if scope == "" {
		scope = "personality"
	}

	st, _, err := s.openWriteScope(scope)
	if err != nil {
		return nil, CompactOutput{}, MapError(err)
	}
	defer st.Close()

	if err := writepath.Compact(ctx, st); err != nil {
		return nil, CompactOutput{}, MapError(err)
	}
	return nil, CompactOutput{Compacted: true}, nil
}

// Serve starts the server on the given transport, blocking until ctx is
// canceled or the transport fails. Only stdio is supported: JSON-RPC frames
// travel over stdout, so nothing else in the process may write there.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio", "":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return merrors.New(merrors.ErrCodeInvalidInput, "unknown transport: "+transport, nil)
	}
}

// Close releases server resources. The MCP server itself has none beyond
// what Serve's context cancellation already tears down.
func (s *Server) Close() error {
	return nil
}
