// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go provides an in-memory cache of rendered component fragments.
// This is the L1 cache: static renderers are pure functions of a
// component's id, kind and data, so a fragment keyed by the id and a hash
// of the encoded data can be reused until the data changes.
package engine

import (
	"crypto/sha256"
	"html/template"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// maxFragments bounds the cache; it is cleared wholesale when full.
const maxFragments = 4096

// cacheKey uniquely identifies one rendered version of a component.
// Any edit to the payload changes the digest and so misses.
type cacheKey struct {
	id     uuid.UUID
	kind   string
	digest [sha256.Size]byte
}

// fragmentCache is a concurrency-safe in-memory cache of rendered fragments.
type fragmentCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]template.HTML
}

// newFragmentCache creates an empty fragment cache.
func newFragmentCache() *fragmentCache {
	return &fragmentCache{
		entries: make(map[cacheKey]template.HTML),
	}
}

func keyFor(id uuid.UUID, kind string, data []byte) cacheKey {
	return cacheKey{id: id, kind: kind, digest: sha256.Sum256(data)}
}

// get retrieves a fragment. ok is false on miss.
func (c *fragmentCache) get(k cacheKey) (template.HTML, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	html, ok := c.entries[k]
	return html, ok
}

// put stores a rendered fragment.
func (c *fragmentCache) put(k cacheKey, html template.HTML) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= maxFragments {
		c.entries = make(map[cacheKey]template.HTML)
		slog.Debug("fragment cache full, cleared", "limit", maxFragments)
	}
	c.entries[k] = html
}

// invalidate removes every cached version of a component.
func (c *fragmentCache) invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id {
			delete(c.entries, k)
		}
	}
}

// len reports the number of cached fragments.
func (c *fragmentCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
