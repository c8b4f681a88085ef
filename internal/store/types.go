// Package store implements the per-corpus durable engine: one SQLite file
// per corpus (global, personality, project) holding memories, their chunks,
// a coherent full-text index, and a content-addressed embedding cache.
package store

import "time"

// Memory is one row of the memories table.
type Memory struct {
	ID        string
	Type      string
	Content   string
	Tags      string
	CreatedAt string
	UpdatedAt string
	Embedding []float32 // nil until the embed worker fills it
}

// Chunk is one row of the memory_chunks table.
type Chunk struct {
	ID         string
	MemoryID   string
	ChunkIndex int
	ChunkText  string
	Embedding  []float32
}

// FTSHit is a single row returned by an FTS match, with its raw (unnormalized)
// lexical score. Smaller magnitude is a better match (see the ranker, which
// normalizes and applies decay).
type FTSHit struct {
	Memory Memory
	Score  float64
}

// Stats summarizes the contents of one corpus store.
type Stats struct {
	TotalMemories int
	IndexedCount  int
	ChunkCount    int
	CacheEntries  int
	ByType        map[string]int
}

// TimestampLayout is the fixed textual timestamp form used for created_at /
// updated_at: lexicographic order equals chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

// Now returns the current UTC time rendered in TimestampLayout.
func Now() string {
	return time.Now().UTC().Format(TimestampLayout)
}
