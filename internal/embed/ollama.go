package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultOllamaHost is the default local Ollama API endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the embedding model requested when none is given.
	DefaultOllamaModel = "nomic-embed-text"
)

// OllamaConfig configures OllamaEmbedder.
type OllamaConfig struct {
	Host            string
	Model           string
	Dimensions      int // 0 = auto-detect from the first embed call
	Timeout         time.Duration
	MaxRetries      int
	SkipHealthCheck bool // for tests against a fake server
}

// DefaultOllamaConfig returns sensible defaults.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		Host:       DefaultOllamaHost,
		Model:      DefaultOllamaModel,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// OllamaEmbedder generates embeddings via Ollama's HTTP `/api/embed` endpoint.
type OllamaEmbedder struct {
	client *http.Client
	host   string
	model  string
	cfg    OllamaConfig

	mu     sync.RWMutex
	dims   int
	closed bool
}

var _ Embedder = (*OllamaEmbedder)(nil)

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"` // string or []string
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewOllamaEmbedder creates a client against cfg.Host. Unless
// SkipHealthCheck is set, it probes the endpoint once to fail fast and to
// auto-detect the embedding dimension when cfg.Dimensions is 0.
func NewOllamaEmbedder(ctx context.Context, cfg OllamaConfig) (*OllamaEmbedder, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	e := &OllamaEmbedder{
		client: &http.Client{Timeout: cfg.Timeout},
		host:   cfg.Host,
		model:  cfg.Model,
		cfg:    cfg,
		dims:   cfg.Dimensions,
	}

	if !cfg.SkipHealthCheck {
		vecs, err := e.embedOnce(ctx, []string{"ping"})
		if err != nil {
			return nil, fmt.Errorf("ollama embedder health check: %w", err)
		}
		if e.dims == 0 && len(vecs) == 1 {
			e.dims = len(vecs[0])
		}
	}

	return e, nil
}

// Embed generates an embedding for one text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embedWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return e.embedWithRetry(ctx, texts)
}

func (e *OllamaEmbedder) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		vecs, err := e.embedOnce(ctx, texts)
		if err == nil {
			e.mu.Lock()
			if e.dims == 0 && len(vecs) > 0 {
				e.dims = len(vecs[0])
			}
			e.mu.Unlock()
			return vecs, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}
	return nil, fmt.Errorf("embed failed after %d attempts: %w", e.cfg.MaxRetries+1, lastErr)
}

func (e *OllamaEmbedder) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	var input any = texts
	if len(texts) == 1 {
		input = texts[0]
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, msg)
	}

	var parsed ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(parsed.Embeddings), len(texts))
	}

	out := make([][]float32, len(parsed.Embeddings))
	for i, v := range parsed.Embeddings {
		f := make([]float32, len(v))
		for j, x := range v {
			f[j] = float32(x)
		}
		out[i] = normalizeVector(f)
	}
	return out, nil
}

// Dimensions returns the embedding dimension, 0 before the first successful
// call if the health check was skipped.
func (e *OllamaEmbedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dims
}

// ModelName returns the configured model identifier.
func (e *OllamaEmbedder) ModelName() string { return e.model }

// Available reports whether the endpoint responds to a lightweight probe.
func (e *OllamaEmbedder) Available(ctx context.Context) bool {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return false
	}
	e.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Close releases the HTTP client's idle connections.
func (e *OllamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.client.CloseIdleConnections()
	return nil
}
