// Package embedcache provides the content-addressed embedding cache: a
// persistent, per-corpus store of (model, text) -> vector, fronted by an
// in-process LRU so repeated lookups within a process don't round-trip
// through SQLite.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Backend is the durable half of the cache; internal/store.Store satisfies
// this directly.
type Backend interface {
	CacheLookup(ctx context.Context, textHash, model string) ([]float32, bool, error)
	CacheStore(ctx context.Context, textHash, model string, vector []float32) error
}

// Cache wraps a Backend with a bounded in-process LRU front.
type Cache struct {
	backend Backend
	front   *lru.Cache[string, []float32]
}

// New builds a Cache. frontSize is the LRU capacity; 0 disables the
// in-process front (every lookup/store goes straight to the backend).
func New(backend Backend, frontSize int) (*Cache, error) {
	if frontSize <= 0 {
		return &Cache{backend: backend}, nil
	}
	front, err := lru.New[string, []float32](frontSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache front: %w", err)
	}
	return &Cache{backend: backend, front: front}, nil
}

// Hash returns the content-address for (model, text): hex SHA-256 of
// "model:text".
func Hash(model, text string) string {
	sum := sha256.Sum256([]byte(model + ":" + text))
	return hex.EncodeToString(sum[:])
}

// Lookup returns a cached embedding for (text, model), checking the
// in-process front before the durable backend.
func (c *Cache) Lookup(ctx context.Context, text, model string) ([]float32, bool, error) {
	key := Hash(model, text)
	if c.front != nil {
		if v, ok := c.front.Get(key); ok {
			return v, true, nil
		}
	}

	v, ok, err := c.backend.CacheLookup(ctx, key, model)
	if err != nil || !ok {
		return nil, false, err
	}
	if c.front != nil {
		c.front.Add(key, v)
	}
	return v, true, nil
}

// Store writes an embedding to both the front cache and the backend.
// Backend failures are returned to the caller to log-and-ignore (the cache
// is strictly an optimization; losing a write only forces recomputation).
func (c *Cache) Store(ctx context.Context, text, model string, vector []float32) error {
	key := Hash(model, text)
	if c.front != nil {
		c.front.Add(key, vector)
	}
	return c.backend.CacheStore(ctx, key, model, vector)
}
