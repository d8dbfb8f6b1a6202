// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"inkwell/internal/metrics"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// genKeyPrefix holds per-tenant invalidation counters. globalGenKey is
	// bumped when every tenant is invalidated at once.
	genKeyPrefix = "pagegen:"
	globalGenKey = genKeyPrefix + "*all"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache caches rendered public documents in Valkey. Keys are scoped
// by tenant so that one blog's changes drop only that blog's pages.
// Cache errors are logged and treated as misses.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Key returns the cache key of a rendered document. variant distinguishes
// renderings of the same path that differ in mount point (tenant host
// versus /sites/ path).
func Key(tenant, variant, path string) string {
	return tenant + ":" + variant + ":" + strings.Trim(path, "/")
}

// Get retrieves cached HTML. ok is false on a miss or a cache error.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.PageCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		metrics.PageCache.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.PageCache.WithLabelValues("hit").Inc()
	return val, true
}

// Set stores rendered HTML with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// errStale aborts a conditional store whose generation has moved on.
var errStale = errors.New("page cache generation changed")

// Generation returns a token that changes whenever the tenant's pages are
// invalidated. Read it before loading the data a page is rendered from and
// pass it to SetIfCurrent. ok is false when Valkey could not be read.
func (pc *PageCache) Generation(ctx context.Context, tenant string) (string, bool) {
	gen, err := generation(ctx, pc.client, tenant)
	if err != nil {
		slog.Warn("page cache generation error", "tenant", tenant, "error", err)
		return "", false
	}
	return gen, true
}

// SetIfCurrent stores rendered HTML only if the tenant has not been
// invalidated since gen was read, so a render that raced an edit never
// caches the old document. It reports whether the page was stored.
func (pc *PageCache) SetIfCurrent(ctx context.Context, tenant, gen, key string, html []byte) bool {
	err := pc.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx, tenant)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, pageKeyPrefix+key, html, pc.ttl)
			return nil
		})
		return err
	}, genKeys(tenant)...)

	switch {
	case err == nil:
		return true
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		slog.Debug("page cache store skipped, invalidated during render", "key", key)
	default:
		slog.Warn("page cache set error", "key", key, "error", err)
	}
	return false
}

// InvalidateTenant removes every cached page of one blog. Called after any
// change to the blog's pages, components, posts or settings. The
// generation is bumped first so renders already in flight are not stored.
func (pc *PageCache) InvalidateTenant(ctx context.Context, tenant string) {
	if err := pc.client.Incr(ctx, genKeyPrefix+tenant).Err(); err != nil {
		slog.Warn("page cache generation bump error", "tenant", tenant, "error", err)
	}
	n := pc.deleteMatching(ctx, pageKeyPrefix+tenant+":*")
	slog.Debug("page cache invalidated", "tenant", tenant, "deleted", n)
}

// InvalidateAll removes all cached pages.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if err := pc.client.Incr(ctx, globalGenKey).Err(); err != nil {
		slog.Warn("page cache generation bump error", "error", err)
	}
	if n := pc.deleteMatching(ctx, pageKeyPrefix+"*"); n > 0 {
		slog.Info("page cache fully cleared", "deleted", n)
	}
}

// deleteMatching deletes keys matching pattern using SCAN so large caches
// do not block the server.
func (pc *PageCache) deleteMatching(ctx context.Context, pattern string) int {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "pattern", pattern, "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			} else {
				deleted += len(keys)
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted
		}
	}
}

func genKeys(tenant string) []string {
	return []string{genKeyPrefix + tenant, globalGenKey}
}

// generation reads the tenant and global counters as one token. Missing
// counters read as empty.
func generation(ctx context.Context, c interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}, tenant string) (string, error) {
	vals, err := c.MGet(ctx, genKeys(tenant)...).Result()
	if err != nil {
		return "", err
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			parts[i] = s
		}
	}
	return strings.Join(parts, "/"), nil
}
