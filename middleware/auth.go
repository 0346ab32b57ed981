package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextUserKey stores the loaded *models.User.
	ContextUserKey = "user"
	// ContextTokenKey stores the raw session token, needed to revoke it on logout.
	ContextTokenKey = "session_token"

	// SessionCookieName carries the signed session token.
	SessionCookieName = "yatube_session"
)

// CurrentUser resolves the viewer from the session cookie or a Bearer header.
// Anonymous requests pass through untouched; it never aborts.
func CurrentUser(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := sessionToken(ctx)
		if token == "" || utils.IsTokenBlacklisted(token) {
			ctx.Next()
			return
		}
		claims, err := utils.ParseToken(token)
		if err != nil {
			ctx.Next()
			return
		}
		var user models.User
		if err := db.WithContext(ctx.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			ctx.Next()
			return
		}
		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextUsernameKey, user.Username)
		ctx.Set(ContextUserKey, &user)
		ctx.Set(ContextTokenKey, token)
		ctx.Next()
	}
}

func sessionToken(ctx *gin.Context) string {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := ctx.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// UserFrom returns the authenticated user or nil for guests.
func UserFrom(ctx *gin.Context) *models.User {
	if v, ok := ctx.Get(ContextUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// ViewerID is the authenticated user's id, 0 for guests.
func ViewerID(ctx *gin.Context) uint {
	if u := UserFrom(ctx); u != nil {
		return u.ID
	}
	return 0
}

// LoginRequired redirects guests to the login page, remembering where they were going.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if UserFrom(ctx) == nil {
			ctx.Redirect(http.StatusFound, LoginRedirectURL(config.Get().LoginURL, ctx.Request.URL.RequestURI()))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// APIAuthRequired answers guests with a JSON 401 instead of a redirect.
func APIAuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if UserFrom(ctx) == nil {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// LoginRedirectURL builds "<loginURL>?next=<next>" keeping slashes readable.
func LoginRedirectURL(loginURL, next string) string {
	escaped := url.QueryEscape(next)
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "next=" + escaped
}

// SafeNext accepts only local absolute paths as post-login targets.
func SafeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return next, true
}
