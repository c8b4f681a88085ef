package mcpserver

import "github.com/mcp-memoria/mcp-memoria/internal/store"

// SaveInput is the input schema for memory_save.
type SaveInput struct {
	Type        string `json:"type" jsonschema:"memory type, e.g. note, fact, conversation"`
	Content     string `json:"content" jsonschema:"the memory content to store"`
	Tags        string `json:"tags,omitempty" jsonschema:"comma-separated tags"`
	Scope       string `json:"scope,omitempty" jsonschema:"corpus to save into: global, personality, or project (default project)"`
	ProjectName string `json:"project_name,omitempty" jsonschema:"explicit project name for personality-scope tagging"`
	SessionID   string `json:"session_id,omitempty" jsonschema:"conversation session id, required when type is conversation"`
}

// SaveOutput is the output schema for memory_save.
type SaveOutput struct {
	ID     string `json:"id" jsonschema:"id of the saved or updated memory"`
	Dedup  string `json:"dedup" jsonschema:"new, or updated if a near-duplicate was merged"`
	Scope  string `json:"scope" jsonschema:"corpus the memory was saved into"`
	Markdown string `json:"markdown" jsonschema:"human-readable summary of the save"`
}

// SearchInput is the input schema for memory_search.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	Scope string `json:"scope,omitempty" jsonschema:"global, personality, project, both, or all (default both)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// SearchOutput is the output schema for memory_search and memory_context.
type SearchOutput struct {
	Results  []SearchHitOutput `json:"results" jsonschema:"ranked memory matches"`
	Markdown string            `json:"markdown" jsonschema:"human-readable rendering of results"`
}

// SearchHitOutput is one ranked memory result tagged with its corpus.
type SearchHitOutput struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Content   string  `json:"content"`
	Tags      string  `json:"tags,omitempty"`
	Scope     string  `json:"scope" jsonschema:"corpus this result came from"`
	Relevance float64 `json:"relevance"`
	Method    string  `json:"method" jsonschema:"fts, embedding, embedding-chunk, or hybrid"`
	UpdatedAt string  `json:"updated_at"`
}

// ContextInput is the input schema for memory_context.
type ContextInput struct {
	Query string `json:"query" jsonschema:"the current conversation context to pull relevant memories for"`
}

// ListInput is the input schema for memory_list.
type ListInput struct {
	Scope string `json:"scope,omitempty" jsonschema:"global, personality, project, both, or all (default all)"`
	Type  string `json:"type,omitempty" jsonschema:"filter by memory type"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of memories, default 20"`
}

// ListOutput is the output schema for memory_list.
type ListOutput struct {
	Memories []ListedMemoryOutput `json:"memories"`
	Markdown string               `json:"markdown"`
}

// ListedMemoryOutput is one memory row tagged with its corpus.
type ListedMemoryOutput struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Tags      string `json:"tags,omitempty"`
	Scope     string `json:"scope"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// StatsInput is the input schema for memory_stats.
type StatsInput struct{}

// StatsOutput is the output schema for memory_stats.
type StatsOutput struct {
	Corpora  []CorpusStatsOutput `json:"corpora"`
	Markdown string              `json:"markdown"`
}

// CorpusStatsOutput is one corpus's aggregate stats.
type CorpusStatsOutput struct {
	Scope         string         `json:"scope"`
	Path          string         `json:"path"`
	TotalMemories int            `json:"total_memories"`
	IndexedCount  int            `json:"indexed_count"`
	ChunkCount    int            `json:"chunk_count"`
	CacheEntries  int            `json:"cache_entries"`
	ByType        map[string]int `json:"by_type,omitempty"`
}

// DeleteInput is the input schema for memory_delete.
type DeleteInput struct {
	ID    string `json:"id" jsonschema:"id of the memory to delete"`
	Scope string `json:"scope,omitempty" jsonschema:"corpus to delete from (default project)"`
}

// DeleteOutput is the output schema for memory_delete.
type DeleteOutput struct {
	Deleted bool `json:"deleted"`
}

// ReindexInput is the input schema for memory_reindex.
type ReindexInput struct {
	Scope string `json:"scope,omitempty" jsonschema:"global, personality, project, both, or all (default all)"`
}

// ReindexOutput is the output schema for memory_reindex.
type ReindexOutput struct {
	Queued          int            `json:"queued" jsonschema:"total number of unembedded memories queued for (re)embedding, across every resolved corpus"`
	QueuedPerCorpus map[string]int `json:"queued_per_corpus" jsonschema:"unembedded memories queued, keyed by corpus name"`
}

// CompactInput is the input schema for memory_compact.
type CompactInput struct {
	Scope string `json:"scope,omitempty" jsonschema:"corpus to compact (default personality)"`
}

// CompactOutput is the output schema for memory_compact.
type CompactOutput struct {
	Compacted bool `json:"compacted"`
}

func toListedMemoryOutput(m store.Memory, scope string) ListedMemoryOutput {
	return ListedMemoryOutput{
		ID:        m.ID,
		Type:      m.Type,
		Content:   m.Content,
		Tags:      m.Tags,
		Scope:     scope,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
