package utils

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultCacheTTL = time.Hour

	// CachePrefix namespaces every key this application caches.
	CachePrefix = "cache:"
	// IndexPageCachePrefix covers every cached rendition of the index listing.
	IndexPageCachePrefix = CachePrefix + "page:index:"
)

// PageCacheKey builds the key of a cached page for one viewer.
func PageCacheKey(prefix, requestURI string, viewerID uint) string {
	return fmt.Sprintf("%spage:%s:%s:u=%d", CachePrefix, prefix, requestURI, viewerID)
}

// CacheGetBytes returns cached bytes for a key from Redis.
func CacheGetBytes(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		Sugar.Debugf("cache get miss key=%s err=%v", key, err)
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores bytes, using the default TTL when ttl is not positive.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// InvalidateByPrefix deletes keys that match the given prefix using SCAN.
// It returns how many keys were removed.
func InvalidateByPrefix(prefix string) int {
	rc := GetRedis()
	if rc == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	removed := 0
	var cursor uint64
	for {
		keys, cur, err := rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			Sugar.Warnf("cache scan failed prefix=%s err=%v", prefix, err)
			break
		}
		cursor = cur
		if len(keys) > 0 {
			if n, err := rc.Del(ctx, keys...).Result(); err == nil {
				removed += int(n)
			}
		}
		if cursor == 0 {
			break
		}
	}
	return removed
}

// ClearCache drops every cached page.
func ClearCache() int {
	return InvalidateByPrefix(CachePrefix)
}

// InvalidateIndexPage drops the cached index listing after a write that changes it.
func InvalidateIndexPage() {
	InvalidateByPrefix(IndexPageCachePrefix)
}
