// Package cmd provides the CLI commands for mcp-memoria.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcp-memoria/mcp-memoria/internal/logging"
	"github.com/mcp-memoria/mcp-memoria/internal/profiling"
	"github.com/mcp-memoria/mcp-memoria/pkg/version"
)

var (
	profileCPU   string
	profileMem   string
	profileTrace string
	profiler     = profiling.NewProfiler()
	cpuCleanup   func()
	traceCleanup func()

	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the mcp-memoria CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-memoria",
		Short: "Three-corpus memory store for AI coding assistants",
		Long: `mcp-memoria stores and retrieves memories across three corpora
(global, personality, project) with hybrid lexical and semantic search,
served to AI assistants like Claude Code over the Model Context Protocol.

Run 'mcp-memoria serve' to start the MCP server, or 'mcp-memoria doctor'
to check your system is ready.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("mcp-memoria version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileTrace, "profile-trace", "", "Write execution trace to file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.mcp-memoria/logs/")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newReindexCmd())
	cmd.AddCommand(newCompactCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging starts CPU/trace profiling and debug logging if flags are set.
func startProfilingAndLogging(cmd *cobra.Command, _ []string) error {
	var err error

	// serve sets up its own MCP-safe logging; skip the generic debug logger
	// here so serve never double-initializes slog's default handler.
	if debugMode && cmd.Name() != "serve" {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Debug("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	}

	if profileCPU != "" {
		cpuCleanup, err = profiler.StartCPU(profileCPU)
		if err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
	}

	if profileTrace != "" {
		traceCleanup, err = profiler.StartTrace(profileTrace)
		if err != nil {
			if cpuCleanup != nil {
				cpuCleanup()
			}
			return fmt.Errorf("failed to start trace: %w", err)
		}
	}

	return nil
}

// stopProfilingAndLogging stops profiling and logging, writes memory profile if requested.
func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	if cpuCleanup != nil {
		cpuCleanup()
		cpuCleanup = nil
	}

	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}

	if profileMem != "" {
		if err := profiler.WriteHeap(profileMem); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
	}

	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
