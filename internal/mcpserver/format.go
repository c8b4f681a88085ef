package mcpserver

import (
	"fmt"
	"strings"

	"github.com/mcp-memoria/mcp-memoria/internal/dispatcher"
)

// clampLimit ensures limit falls within [min, max], substituting defaultVal
// for a non-positive input.
func clampLimit(limit, defaultVal, min, max int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}

func toSearchHitOutput(h dispatcher.Hit) SearchHitOutput {
	return SearchHitOutput{
		ID:        h.ID,
		Type:      h.Type,
		Content:   h.Content,
		Tags:      h.Tags,
		Scope:     h.Scope,
		Relevance: h.Relevance,
		Method:    h.Method,
		UpdatedAt: h.UpdatedAt,
	}
}

// formatSearchResults renders ranked hits as markdown for display in a
// chat transcript.
func formatSearchResults(query string, hits []SearchHitOutput) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No memories found for \"%s\"", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Memory Search: \"%s\"\n\n", query)
	fmt.Fprintf(&sb, "Found %d result", len(hits))
	if len(hits) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, h := range hits {
		fmt.Fprintf(&sb, "### %d. [%s/%s] (relevance: %.2f, %s)\n\n%s\n\n",
			i+1, h.Scope, h.Type, h.Relevance, h.Method, h.Content)
		if h.Tags != "" {
			fmt.Fprintf(&sb, "tags: %s\n\n", h.Tags)
		}
	}
	return sb.String()
}

// formatListedMemories renders a memory listing as markdown.
func formatListedMemories(memories []ListedMemoryOutput) string {
	if len(memories) == 0 {
		return "No memories found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Memories (%d)\n\n", len(memories))
	for i, m := range memories {
		fmt.Fprintf(&sb, "%d. [%s/%s] %s (updated %s)\n", i+1, m.Scope, m.Type, truncate(m.Content, 120), m.UpdatedAt)
	}
	return sb.String()
}

// formatStats renders per-corpus stats as a markdown table.
func formatStats(corpora []CorpusStatsOutput) string {
	var sb strings.Builder
	sb.WriteString("## Memory Stats\n\n")
	sb.WriteString("| corpus | total | indexed | chunks | cached embeddings |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, c := range corpora {
		fmt.Fprintf(&sb, "| %s | %d | %d | %d | %d |\n", c.Scope, c.TotalMemories, c.IndexedCount, c.ChunkCount, c.CacheEntries)
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
