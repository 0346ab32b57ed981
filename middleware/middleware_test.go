package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.Override(config.AppConfig{SecretKey: "middleware-test-secret"})
}

func TestLoginRedirectURLKeepsSlashes(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/create/", LoginRedirectURL("/auth/login/", "/create/"))
	assert.Equal(t, "/auth/login/?next=/posts/1/edit/", LoginRedirectURL("/auth/login/", "/posts/1/edit/"))
	assert.Equal(t, "/auth/login/?next=/follow/%3Fpage%3D2", LoginRedirectURL("/auth/login/", "/follow/?page=2"))
	assert.Equal(t, "/login?x=1&next=/a%20b/", LoginRedirectURL("/login?x=1", "/a b/"))
}

func TestSafeNext(t *testing.T) {
	for _, next := range []string{"/create/", "/profile/leo/?page=2"} {
		got, ok := SafeNext(next)
		assert.True(t, ok, next)
		assert.Equal(t, next, got)
	}
	for _, next := range []string{"", "create/", "//evil.example/", "https://evil.example/", "/\\evil"} {
		_, ok := SafeNext(next)
		assert.False(t, ok, next)
	}
}

func TestLoginRequiredRedirectsGuests(t *testing.T) {
	r := gin.New()
	r.GET("/create/", LoginRequired(), func(c *gin.Context) { c.String(http.StatusOK, "form") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/create/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))
}

func TestCachePageServesStaleBytesUntilCleared(t *testing.T) {
	mr := miniredis.RunT(t)
	utils.SetRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	body := "first"
	r := gin.New()
	r.GET("/", CachePage(20*time.Second, "index"), func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	})

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	first := get()
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "first", first.Body.String())

	body = "second"
	hit := get()
	assert.Equal(t, "first", hit.Body.String())
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))

	utils.ClearCache()
	assert.Equal(t, "second", get().Body.String())

	body = "third"
	mr.FastForward(21 * time.Second)
	assert.Equal(t, "third", get().Body.String())
}

func TestCachePageSkipsErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	utils.SetRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	r := gin.New()
	r.GET("/missing", CachePage(time.Minute, "index"), func(c *gin.Context) {
		c.String(http.StatusNotFound, "nope")
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, mr.Keys())
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(4)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(60)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.True(t, rl.Allow(ip))
	}
	assert.Len(t, rl.visitors, 3)

	// idle entries stay until the next sweep is due
	clock = clock.Add(30 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.Len(t, rl.visitors, 3)

	clock = clock.Add(limiterIdleTTL + time.Second)
	assert.True(t, rl.Allow("10.0.0.4"))
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "10.0.0.4")
}

func TestRateLimitLetsReadsThrough(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1))
	r.Any("/auth/login/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/login/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
