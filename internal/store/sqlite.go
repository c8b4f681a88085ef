package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // pure Go driver, no CGO

	"github.com/mcp-memoria/mcp-memoria/internal/codec"
	"github.com/mcp-memoria/mcp-memoria/internal/merrors"
)

func encodeVector(v []float32) []byte  { return codec.Encode(v) }
func decodeVector(b []byte) []float32  { return codec.Decode(b) }

// Store is a handle to one corpus's SQLite file. A Store serializes its own
// writes with an in-process mutex and a cross-process flock on the db path,
// so multiple mcp-memoria processes sharing the same corpus file never
// interleave writes; readers never block.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// Open opens (creating if absent) the corpus database at path, applying the
// schema and WAL/foreign-key pragmas.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, merrors.Wrap(merrors.ErrCodeStoreOpen, fmt.Errorf("create store directory %s: %w", dir, err))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, merrors.Wrap(merrors.ErrCodeStoreOpen, fmt.Errorf("open %s: %w", path, err))
	}

	// Single writer per process handle; cross-process serialization is via flock.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, merrors.Wrap(merrors.ErrCodeStoreOpen, fmt.Errorf("set pragma %q: %w", p, err))
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, merrors.Wrap(merrors.ErrCodeStoreOpen, fmt.Errorf("apply schema: %w", err))
	}

	return &Store{
		db:   db,
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the corpus file path this Store was opened with.
func (s *Store) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// withWriteLock runs fn while holding both the in-process mutex and the
// cross-process flock, so WritePath and EmbedWorker writers to the same
// corpus file never interleave even across separate mcp-memoria processes.
func (s *Store) withWriteLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("acquire store lock: %w", err))
	}
	defer func() { _ = s.lock.Unlock() }()

	return fn()
}

// InsertOrReplaceMemory inserts a new memory row, or replaces one sharing
// the same id.
func (s *Store) InsertOrReplaceMemory(ctx context.Context, m Memory) error {
	return s.withWriteLock(func() error {
		var blob []byte
		if m.Embedding != nil {
			blob = encodeVector(m.Embedding)
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO memories(id, type, content, tags, created_at, updated_at, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.Type, m.Content, m.Tags, m.CreatedAt, m.UpdatedAt, blob)
		if err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("insert memory %s: %w", m.ID, err))
		}
		return nil
	})
}

// UpdateContentTags overwrites a memory's content and tags (a dedup merge),
// refreshes updated_at, and clears its embedding so the worker re-indexes it.
func (s *Store) UpdateContentTags(ctx context.Context, id, content, tags, updatedAt string) error {
	return s.withWriteLock(func() error {
		_, err := s.db.ExecContext(ctx, `
			UPDATE memories SET content = ?, tags = ?, updated_at = ?, embedding = NULL
			WHERE id = ?`, content, tags, updatedAt, id)
		if err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("update memory %s: %w", id, err))
		}
		return nil
	})
}

// UpdateEmbedding writes a memory's embedding blob.
func (s *Store) UpdateEmbedding(ctx context.Context, id string, vector []float32) error {
	return s.withWriteLock(func() error {
		_, err := s.db.ExecContext(ctx, `UPDATE memories SET embedding = ? WHERE id = ?`,
			encodeVector(vector), id)
		if err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("update embedding for %s: %w", id, err))
		}
		return nil
	})
}

// ReplaceChunks deletes a memory's existing chunk set and inserts the given
// chunks in its place, as a single write.
func (s *Store) ReplaceChunks(ctx context.Context, memoryID string, chunks []Chunk) error {
	return s.withWriteLock(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("begin tx: %w", err))
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM memory_chunks WHERE memory_id = ?`, memoryID); err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("delete chunks for %s: %w", memoryID, err))
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO memory_chunks(id, memory_id, chunk_index, chunk_text, embedding)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("prepare chunk insert: %w", err))
		}
		defer stmt.Close()

		for _, c := range chunks {
			if _, err := stmt.ExecContext(ctx, c.ID, c.MemoryID, c.ChunkIndex, c.ChunkText, encodeVector(c.Embedding)); err != nil {
				return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("insert chunk %s: %w", c.ID, err))
			}
		}

		if err := tx.Commit(); err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("commit chunk replace: %w", err))
		}
		return nil
	})
}

// DeleteMemory removes a memory row. Cascades remove its chunks; the FTS
// trigger removes the index entry. Silent if absent.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	return s.withWriteLock(func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
		if err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("delete memory %s: %w", id, err))
		}
		return nil
	})
}

// GetByID fetches one memory by id, or nil if absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Memory, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, content, tags, created_at, updated_at, embedding
		FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("get memory %s: %w", id, err))
	}
	return m, nil
}

// ExactMatch returns the id of an existing memory sharing the same
// (type, content), or "" if none exists. Used by the dedup exact phase.
func (s *Store) ExactMatch(ctx context.Context, typ, content string) (string, error) {
	var id string
	row := s.db.QueryRowContext(ctx, `SELECT id FROM memories WHERE type = ? AND content = ? LIMIT 1`, typ, content)
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("exact match: %w", err))
	}
	return id, nil
}

// List returns memories newest-updated-first, optionally filtered by type.
func (s *Store) List(ctx context.Context, typeFilter string, limit int) ([]Memory, error) {
	var rows *sql.Rows
	var err error
	if typeFilter != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, type, content, tags, created_at, updated_at, embedding
			FROM memories WHERE type = ? ORDER BY updated_at DESC LIMIT ?`, typeFilter, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, type, content, tags, created_at, updated_at, embedding
			FROM memories ORDER BY updated_at DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("list memories: %w", err))
	}
	defer rows.Close()
	return collectMemories(rows)
}

// ListUnembedded enumerates memories whose embedding is still NULL.
func (s *Store) ListUnembedded(ctx context.Context) ([]Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, content, tags, created_at, updated_at, embedding
		FROM memories WHERE embedding IS NULL`)
	if err != nil {
		return nil, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("list unembedded: %w", err))
	}
	defer rows.Close()
	return collectMemories(rows)
}

// MemoriesWithEmbedding iterates memories carrying a memory-level embedding.
func (s *Store) MemoriesWithEmbedding(ctx context.Context) ([]Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, content, tags, created_at, updated_at, embedding
		FROM memories WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("scan embedded memories: %w", err))
	}
	defer rows.Close()
	return collectMemories(rows)
}

// ChunksWithEmbedding iterates chunks carrying an embedding, joined with
// their parent memory's metadata.
func (s *Store) ChunksWithEmbedding(ctx context.Context) ([]Chunk, []Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.memory_id, c.chunk_index, c.chunk_text, c.embedding,
		       m.id, m.type, m.content, m.tags, m.created_at, m.updated_at
		FROM memory_chunks c JOIN memories m ON c.memory_id = m.id
		WHERE c.embedding IS NOT NULL`)
	if err != nil {
		return nil, nil, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("scan embedded chunks: %w", err))
	}
	defer rows.Close()

	var chunks []Chunk
	var parents []Memory
	for rows.Next() {
		var c Chunk
		var parent Memory
		var blob []byte
		if err := rows.Scan(&c.ID, &c.MemoryID, &c.ChunkIndex, &c.ChunkText, &blob,
			&parent.ID, &parent.Type, &parent.Content, &parent.Tags, &parent.CreatedAt, &parent.UpdatedAt); err != nil {
			return nil, nil, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("scan chunk row: %w", err))
		}
		c.Embedding = decodeVector(blob)
		chunks = append(chunks, c)
		parents = append(parents, parent)
	}
	return chunks, parents, rows.Err()
}

// MatchFTS runs an FTS5 MATCH query, optionally restricted to a memory type,
// returning up to limit hits ordered by the index's native bm25 score
// (ascending: smaller is better, per FTS5 convention).
func (s *Store) MatchFTS(ctx context.Context, matchQuery, typeFilter string, limit int) ([]FTSHit, error) {
	var rows *sql.Rows
	var err error
	if typeFilter != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT m.id, m.type, m.content, m.tags, m.created_at, m.updated_at, m.embedding,
			       bm25(memories_fts) AS score
			FROM memories_fts f JOIN memories m ON f.rowid = m.rowid
			WHERE m.type = ? AND memories_fts MATCH ?
			ORDER BY score LIMIT ?`, typeFilter, matchQuery, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT m.id, m.type, m.content, m.tags, m.created_at, m.updated_at, m.embedding,
			       bm25(memories_fts) AS score
			FROM memories_fts f JOIN memories m ON f.rowid = m.rowid
			WHERE memories_fts MATCH ?
			ORDER BY score LIMIT ?`, matchQuery, limit)
	}
	if err != nil {
		if isFTSSyntaxError(err) {
			return nil, nil
		}
		return nil, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("fts match: %w", err))
	}
	defer rows.Close()

	var hits []FTSHit
	for rows.Next() {
		var m Memory
		var blob []byte
		var score float64
		if err := rows.Scan(&m.ID, &m.Type, &m.Content, &m.Tags, &m.CreatedAt, &m.UpdatedAt, &blob, &score); err != nil {
			return nil, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("scan fts row: %w", err))
		}
		m.Embedding = decodeVector(blob)
		hits = append(hits, FTSHit{Memory: m, Score: score})
	}
	return hits, rows.Err()
}

func isFTSSyntaxError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "fts5:") || strings.Contains(msg, "syntax error")
}

// Stats aggregates counts for this corpus.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`)
	if err := row.Scan(&st.TotalMemories); err != nil {
		return st, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("count memories: %w", err))
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories WHERE embedding IS NOT NULL`)
	if err := row.Scan(&st.IndexedCount); err != nil {
		return st, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("count indexed: %w", err))
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_chunks`)
	if err := row.Scan(&st.ChunkCount); err != nil {
		return st, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("count chunks: %w", err))
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embedding_cache`)
	if err := row.Scan(&st.CacheEntries); err != nil {
		return st, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("count cache entries: %w", err))
	}

	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM memories GROUP BY type`)
	if err != nil {
		return st, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("type histogram: %w", err))
	}
	defer rows.Close()
	st.ByType = make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return st, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("scan histogram row: %w", err))
		}
		st.ByType[t] = n
	}
	return st, rows.Err()
}

// CacheLookup returns a cached embedding for (textHash, model), or ok=false.
func (s *Store) CacheLookup(ctx context.Context, textHash, model string) (vector []float32, ok bool, err error) {
	var blob []byte
	row := s.db.QueryRowContext(ctx, `
		SELECT embedding FROM embedding_cache WHERE text_hash = ? AND model = ?`, textHash, model)
	if scanErr := row.Scan(&blob); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("cache lookup: %w", scanErr))
	}
	return decodeVector(blob), true, nil
}

// CacheStore writes or replaces a cache entry. Fire-and-forget by contract:
// callers log failures and continue (the cache is an optimization only).
func (s *Store) CacheStore(ctx context.Context, textHash, model string, vector []float32) error {
	return s.withWriteLock(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO embedding_cache(text_hash, model, embedding, created_at)
			VALUES (?, ?, ?, ?)`, textHash, model, encodeVector(vector), Now())
		if err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("cache store: %w", err))
		}
		return nil
	})
}

// Compact rebuilds the FTS index from the base table and reclaims storage.
// It blocks writers briefly via the write lock but never loses data.
func (s *Store) Compact(ctx context.Context) error {
	return s.withWriteLock(func() error {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO memories_fts(memories_fts) VALUES ('rebuild')`); err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("rebuild fts: %w", err))
		}
		if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
			return merrors.Wrap(merrors.ErrCodeStoreWrite, fmt.Errorf("vacuum: %w", err))
		}
		return nil
	})
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMemory(row scannable) (*Memory, error) {
	var m Memory
	var blob []byte
	if err := row.Scan(&m.ID, &m.Type, &m.Content, &m.Tags, &m.CreatedAt, &m.UpdatedAt, &blob); err != nil {
		return nil, err
	}
	m.Embedding = decodeVector(blob)
	return &m, nil
}

func collectMemories(rows *sql.Rows) ([]Memory, error) {
	var out []Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, merrors.Wrap(merrors.ErrCodeStoreQuery, fmt.Errorf("scan memory row: %w", err))
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
