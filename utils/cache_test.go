package utils

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return mr
}

func TestCacheRoundTripAndExpiry(t *testing.T) {
	mr := withMiniredis(t)

	CacheSetBytes("cache:k", []byte("v"), time.Minute)
	b, ok := CacheGetBytes("cache:k")
	require.True(t, ok)
	assert.Equal(t, "v", string(b))

	mr.FastForward(2 * time.Minute)
	_, ok = CacheGetBytes("cache:k")
	assert.False(t, ok)
}

func TestInvalidateIndexPageKeepsOtherPages(t *testing.T) {
	withMiniredis(t)

	index := PageCacheKey("index", "/?page=2", 0)
	other := PageCacheKey("group", "/group/cats/", 0)
	CacheSetBytes(index, []byte("index"), 0)
	CacheSetBytes(other, []byte("group"), 0)

	InvalidateIndexPage()

	_, ok := CacheGetBytes(index)
	assert.False(t, ok)
	_, ok = CacheGetBytes(other)
	assert.True(t, ok)
}

func TestClearCacheRemovesOnlyOwnKeys(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set("jwt:blacklist:x", "1"))

	CacheSetBytes(PageCacheKey("index", "/", 1), []byte("a"), 0)
	CacheSetBytes(PageCacheKey("index", "/", 2), []byte("b"), 0)

	assert.Equal(t, 2, ClearCache())
	assert.True(t, mr.Exists("jwt:blacklist:x"))
}

func TestPageCacheKey(t *testing.T) {
	assert.Equal(t, "cache:page:index:/?page=2:u=5", PageCacheKey("index", "/?page=2", 5))
}
