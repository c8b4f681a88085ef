// Package memconfig holds the tunables the core treats as fixed constants
// in principle but that benefit from being overridable for tests and
// tuning: dedup threshold, hybrid weights, decay strength, chunk size and
// overlap, the embed queue capacity, and the embedding cache's front-cache
// size.
package memconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full set of tunables, yaml-tagged for an optional config
// file at ~/.mcp-memoria/config.yaml.
type Config struct {
	Search     SearchConfig     `yaml:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Dedup      DedupConfig      `yaml:"dedup"`
}

// SearchConfig holds the ranker's hybrid weights and decay strength.
type SearchConfig struct {
	VectorWeight  float64 `yaml:"vector_weight"`
	TextWeight    float64 `yaml:"text_weight"`
	DecayStrength float64 `yaml:"decay_strength"`
	ChunkSize     int     `yaml:"chunk_size"`
	ChunkOverlap  int     `yaml:"chunk_overlap"`
}

// EmbeddingsConfig holds the embedder backend and embed queue sizing.
type EmbeddingsConfig struct {
	OllamaHost     string `yaml:"ollama_host"`
	OllamaModel    string `yaml:"ollama_model"`
	QueueCapacity  int    `yaml:"queue_capacity"`
	CacheFrontSize int    `yaml:"cache_front_size"`
}

// DedupConfig holds the near-duplicate detector's similarity floor.
type DedupConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// Default returns the spec's fixed constants as the default configuration.
func Default() Config {
	return Config{
		Search: SearchConfig{
			VectorWeight:  0.7,
			TextWeight:    0.3,
			DecayStrength: 0.15,
			ChunkSize:     400,
			ChunkOverlap:  80,
		},
		Embeddings: EmbeddingsConfig{
			OllamaHost:     "http://localhost:11434",
			OllamaModel:    "nomic-embed-text",
			QueueCapacity:  256,
			CacheFrontSize: 512,
		},
		Dedup: DedupConfig{
			Threshold: 0.85,
		},
	}
}

// UserConfigPath returns ~/.mcp-memoria/config.yaml.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".mcp-memoria", "config.yaml")
	}
	return filepath.Join(home, ".mcp-memoria", "config.yaml")
}

// Load returns the default configuration merged with the user config file,
// if one exists. A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()

	path := UserConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
