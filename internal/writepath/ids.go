package writepath

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// idLength is the number of hex characters kept from the SHA-256 digest.
const idLength = 16

// generateID mints a deterministic memory id: the first 16 hex characters
// of SHA-256("{type}:{content}:{now in RFC3339}"). The timestamp salt keeps
// ids distinct across saves of identical content at different times.
func generateID(typ, content string) string {
	now := time.Now().UTC().Format(time.RFC3339)
	return hashID(fmt.Sprintf("%s:%s:%s", typ, content, now))
}

// SessionID derives a conversation memory's id from its session key:
// SHA-256("session:{session_id}")[:16]. Conversation saves are idempotent
// per session — the same session_id always yields the same id, enabling an
// upsert instead of accumulating one row per turn.
func SessionID(sessionID string) string {
	return hashID("session:" + sessionID)
}

func hashID(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:idLength]
}
