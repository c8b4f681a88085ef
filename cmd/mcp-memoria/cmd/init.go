package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcp-memoria/mcp-memoria/internal/embed"
	"github.com/mcp-memoria/mcp-memoria/internal/lifecycle"
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/output"
)

// mcpServerConfig is one entry of .mcp.json's mcpServers map.
type mcpServerConfig struct {
	Type    string            `json:"type,omitempty"`
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

type mcpConfigFile struct {
	MCPServers map[string]mcpServerConfig `json:"mcpServers"`
}

// newInitCmd registers mcp-memoria as an MCP server for the current
// project (via 'claude mcp add' or a generated .mcp.json), ensures the
// project corpus directory is gitignored, and makes sure Ollama is
// installed, running, and has the configured embedding model pulled.
func newInitCmd() *cobra.Command {
	var (
		global  bool
		force   bool
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Register mcp-memoria as an MCP server and prepare the embedder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, global, force, offline)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Configure for all projects (user scope)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip Ollama setup; use the static embedder")

	return cmd
}

func runInit(cmd *cobra.Command, global, force, offline bool) error {
	ctx := cmd.Context()
	out := output.New(cmd.OutOrStdout())

	out.Status("*", "mcp-memoria init")
	out.Newline()

	projectDir, err := memconfig.ProjectDir()
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}
	absRoot, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	out.Statusf("*", "Project: %s", absRoot)

	mcpConfigured, err := configureMCP(absRoot, global, force)
	if err != nil {
		out.Warningf("MCP configuration failed: %v", err)
		out.Status("*", "You can manually configure .mcp.json later")
	} else if mcpConfigured {
		out.Success("Registered mcp-memoria as an MCP server")
	}

	added, err := ensureGitignore(absRoot)
	if err != nil {
		out.Warningf("Could not update .gitignore: %v", err)
	} else if added {
		out.Status("*", "Added .mcp-memoria/ to .gitignore")
	}

	if offline {
		out.Status("*", "Skipping embedder setup (--offline)")
	} else {
		out.Newline()
		out.Status("*", "Checking Ollama...")

		cfg, cfgErr := memconfig.Load()
		if cfgErr != nil {
			return cfgErr
		}

		manager := lifecycle.NewOllamaManagerWithHost(cfg.Embeddings.OllamaHost)
		model := cfg.Embeddings.OllamaModel
		if model == "" {
			model = embed.DefaultOllamaModel
		}

		opts := lifecycle.DefaultEnsureOpts()
		opts.Stdout = cmd.OutOrStdout()
		opts.ProgressFunc = lifecycle.CreatePullProgressFunc(cmd.OutOrStdout())

		if ensureErr := manager.EnsureReady(ctx, model, opts); ensureErr != nil {
			out.Warningf("Ollama setup incomplete: %v", ensureErr)
			out.Status("*", "Run 'mcp-memoria serve --offline' to use the static embedder instead of Ollama")
		} else {
			out.Success("Ollama ready with model " + model)
		}
	}

	out.Newline()
	out.Success("Initialization complete")
	out.Status("*", "Restart Claude Code, then run 'mcp-memoria doctor' to verify setup")

	return nil
}

func configureMCP(projectRoot string, global, force bool) (bool, error) {
	if configured, err := configureViaClaude(projectRoot, global, force); err == nil && configured {
		return true, nil
	}
	return configureViaMCPJSON(projectRoot, force)
}

func configureViaClaude(projectRoot string, global, _ bool) (bool, error) {
	if !global {
		return false, nil
	}

	claudePath, err := exec.LookPath("claude")
	if err != nil {
		return false, nil
	}

	binPath, err := findOwnBinary()
	if err != nil {
		return false, fmt.Errorf("failed to find mcp-memoria binary: %w", err)
	}

	args := []string{"mcp", "add", "--transport", "stdio", "--scope", "user", "mcp-memoria", "--", binPath, "serve"}
	cmd := exec.Command(claudePath, args...)
	cmd.Dir = projectRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("claude mcp add failed: %w", err)
	}
	return true, nil
}

func configureViaMCPJSON(projectRoot string, force bool) (bool, error) {
	mcpPath := filepath.Join(projectRoot, ".mcp.json")

	var existing mcpConfigFile
	if data, err := os.ReadFile(mcpPath); err == nil {
		if err := json.Unmarshal(data, &existing); err != nil {
			return false, fmt.Errorf("failed to parse existing .mcp.json: %w", err)
		}
		if _, exists := existing.MCPServers["mcp-memoria"]; exists && !force {
			return true, nil
		}
	} else {
		existing = mcpConfigFile{MCPServers: make(map[string]mcpServerConfig)}
	}

	binPath, err := findOwnBinary()
	if err != nil {
		return false, fmt.Errorf("failed to find mcp-memoria binary: %w", err)
	}

	existing.MCPServers["mcp-memoria"] = mcpServerConfig{
		Type:    "stdio",
		Command: binPath,
		Args:    []string{"serve"},
		Cwd:     projectRoot,
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(mcpPath, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write .mcp.json: %w", err)
	}
	return true, nil
}

func findOwnBinary() (string, error) {
	execPath, err := os.Executable()
	if err == nil {
		if realPath, err := filepath.EvalSymlinks(execPath); err == nil {
			return realPath, nil
		}
		return execPath, nil
	}
	return exec.LookPath("mcp-memoria")
}

// ensureGitignore adds .mcp-memoria/ to the project's .gitignore, since
// that's where the project corpus database lives.
func ensureGitignore(projectRoot string) (bool, error) {
	gitignorePath := filepath.Join(projectRoot, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("reading .gitignore: %w", err)
	}

	if hasMemoriaIgnore(string(content)) {
		return false, nil
	}

	lineEnding := "\n"
	if bytes.Contains(content, []byte("\r\n")) {
		lineEnding = "\r\n"
	}
	if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
		content = append(content, []byte(lineEnding)...)
	}

	var entry string
	if len(content) == 0 {
		entry = fmt.Sprintf("# mcp-memoria project corpus (auto-generated)%s.mcp-memoria/%s", lineEnding, lineEnding)
	} else {
		entry = fmt.Sprintf("%s# mcp-memoria project corpus (auto-generated)%s.mcp-memoria/%s", lineEnding, lineEnding, lineEnding)
	}
	content = append(content, []byte(entry)...)

	if err := os.WriteFile(gitignorePath, content, 0644); err != nil {
		return false, fmt.Errorf("writing .gitignore: %w", err)
	}
	return true, nil
}

func hasMemoriaIgnore(content string) bool {
	patterns := []string{".mcp-memoria", ".mcp-memoria/", "/.mcp-memoria", "/.mcp-memoria/"}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		for _, p := range patterns {
			if line == p {
				return true
			}
		}
	}
	return false
}
