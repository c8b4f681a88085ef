package store

// schema is applied on every open; every statement is idempotent so
// repeated opens of the same file are safe migrations-by-construction.
//
// memories.rowid backs the FTS5 external-content table directly
// (content='memories', content_rowid='rowid'), and the three triggers below
// keep memories_fts in lockstep with every insert, update, and delete — no
// orphan FTS rows can exist.
const schema = `
CREATE TABLE IF NOT EXISTS memories (
	id         TEXT NOT NULL UNIQUE,
	type       TEXT NOT NULL,
	content    TEXT NOT NULL,
	tags       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	embedding  BLOB
);

CREATE INDEX IF NOT EXISTS idx_memories_type       ON memories(type);
CREATE INDEX IF NOT EXISTS idx_memories_created_at ON memories(created_at);
CREATE INDEX IF NOT EXISTS idx_memories_updated_at ON memories(updated_at);

CREATE TABLE IF NOT EXISTS memory_chunks (
	id          TEXT PRIMARY KEY,
	memory_id   TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	chunk_text  TEXT NOT NULL,
	embedding   BLOB
);

CREATE INDEX IF NOT EXISTS idx_chunks_memory ON memory_chunks(memory_id);

CREATE TABLE IF NOT EXISTS embedding_cache (
	text_hash  TEXT NOT NULL,
	model      TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (text_hash, model)
);

CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
	content,
	tags,
	content='memories',
	content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
	INSERT INTO memories_fts(rowid, content, tags) VALUES (new.rowid, new.content, new.tags);
END;

CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
	INSERT INTO memories_fts(memories_fts, rowid, content, tags) VALUES('delete', old.rowid, old.content, old.tags);
END;

CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE ON memories BEGIN
	INSERT INTO memories_fts(memories_fts, rowid, content, tags) VALUES('delete', old.rowid, old.content, old.tags);
	INSERT INTO memories_fts(rowid, content, tags) VALUES (new.rowid, new.content, new.tags);
END;
`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = -16384",
}
