package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/utils"
)

type cachingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *cachingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cachingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves GET responses from the redis page cache for ttl.
// The key includes the viewer, so it must run after CurrentUser.
func CachePage(ttl time.Duration, prefix string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}
		key := utils.PageCacheKey(prefix, ctx.Request.URL.RequestURI(), ViewerID(ctx))
		if b, ok := utils.CacheGetBytes(key); ok {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, "text/html; charset=utf-8", b)
			ctx.Abort()
			return
		}

		w := &cachingWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = w
		ctx.Next()

		if w.Status() == http.StatusOK && len(ctx.Errors) == 0 && w.body.Len() > 0 {
			utils.CacheSetBytes(key, w.body.Bytes(), ttl)
		}
	}
}
