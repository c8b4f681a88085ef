package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for MCP server mode: logs go to file
// only, never to stdout or stderr, since stdout carries the JSON-RPC
// stream and any stray write there would corrupt the protocol. Debug level
// is always enabled in this mode for complete diagnostics.
func SetupMCPMode() (func(), error) {
	cfg := Config{
		Level:         "debug",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	slog.Info("MCP mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return cleanup, nil
}

// SetupMCPModeWithLevel initializes MCP-safe logging at a specific level.
func SetupMCPModeWithLevel(level string) (func(), error) {
	cfg := Config{
		Level:         level,
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return cleanup, nil
}
