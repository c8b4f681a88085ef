package memconfig

import (
	"os"
	"path/filepath"
)

// Paths resolves the three corpus database locations.
type Paths struct {
	GlobalDB      string
	PersonalityDB string
	DataDir       string
}

// NewPaths builds Paths rooted at ~/.mcp-memoria/data.
func NewPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}
	dataDir := filepath.Join(home, ".mcp-memoria", "data")
	return Paths{
		GlobalDB:      filepath.Join(dataDir, "global.db"),
		PersonalityDB: filepath.Join(dataDir, "personality.db"),
		DataDir:       dataDir,
	}, nil
}

// ProjectDir resolves the current project directory: MCP_PROJECT_DIR, then
// the legacy CLAUDE_CWD synonym, then the process's working directory.
func ProjectDir() (string, error) {
	if v := os.Getenv("MCP_PROJECT_DIR"); v != "" {
		return v, nil
	}
	if v := os.Getenv("CLAUDE_CWD"); v != "" {
		return v, nil
	}
	return os.Getwd()
}

// ProjectDBPath returns the project corpus path: <project dir>/.mcp-memoria/project.db.
func ProjectDBPath() (string, error) {
	dir, err := ProjectDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".mcp-memoria", "project.db"), nil
}

// ProjectName derives the project name used to tag personality-scope saves:
// the explicit name if given, else the final path component of the
// resolved project directory, else "no-project".
func ProjectName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir, err := ProjectDir()
	if err != nil || dir == "" {
		return "no-project"
	}
	name := filepath.Base(dir)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "no-project"
	}
	return name
}
