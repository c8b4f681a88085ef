package preflight

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// embedderProbeTimeout bounds the reachability probe so doctor never hangs
// waiting on a down or unreachable Ollama host.
const embedderProbeTimeout = 3 * time.Second

// CheckEmbedderReachable checks whether the configured Ollama host responds.
// Non-critical: the service falls back to the dependency-free static
// embedder when Ollama is unavailable, so this is reported as a warning,
// never a failure.
func (c *Checker) CheckEmbedderReachable(ctx context.Context, host string) CheckResult {
	result := CheckResult{
		Name:     "embedder_reachable",
		Required: false,
	}

	if host == "" {
		result.Status = StatusWarn
		result.Message = "no embedder host configured (using static fallback)"
		return result
	}

	reqCtx, cancel := context.WithTimeout(ctx, embedderProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, host+"/api/tags", nil)
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot build request: %v", err)
		return result
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		result.Status = StatusWarn
		result.Message = "Ollama not reachable (will fall back to static embeddings)"
		result.Details = fmt.Sprintf("host: %s, error: %v", host, err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("Ollama responded with status %d", resp.StatusCode)
		result.Details = fmt.Sprintf("host: %s", host)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("Ollama reachable at %s", host)
	return result
}
