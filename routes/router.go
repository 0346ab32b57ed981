package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/controllers"
	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/templates"
	"github.com/cppla/yatube/utils"
)

// MediaStorage describes where uploaded images live for the active configuration.
func MediaStorage(cfg config.AppConfig) utils.MediaStorage {
	return utils.MediaStorage{
		Root:    cfg.MediaRoot,
		URL:     cfg.MediaURL,
		MaxSize: int64(cfg.MaxImageSizeMB) << 20,
	}
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	media := MediaStorage(cfg)
	renderer, err := templates.New(map[string]any{"media": media.PublicURL})
	if err != nil {
		// pages are embedded, so this only fails on a broken build
		panic(err)
	}

	r := gin.New()
	r.HTMLRender = renderer
	r.MaxMultipartMemory = media.MaxSize + 1<<20

	serverError := func(ctx *gin.Context) {
		ctx.HTML(http.StatusInternalServerError, "core/500.html", gin.H{"Year": time.Now().Year()})
	}
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false, serverError))
	} else {
		r.Use(utils.RecoveryWithZap(utils.Logger, true, serverError))
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaRoot)
	r.GET("/health", controllers.Health(db))

	r.Use(middleware.CurrentUser(db))

	postController := controllers.NewPostController(db, media, cfg.PostsPerPage)
	followController := controllers.NewFollowController(db, cfg.PostsPerPage)
	authController := controllers.NewAuthController(db)
	loginRequired := middleware.LoginRequired()

	indexTTL := time.Duration(cfg.IndexCacheSeconds) * time.Second
	r.GET("/", middleware.CachePage(indexTTL, "index"), postController.Index)
	r.GET("/group/:slug/", postController.GroupPosts)
	r.GET("/profile/:username/", postController.Profile)
	r.GET("/profile/:username/follow/", loginRequired, followController.ProfileFollow)
	r.GET("/profile/:username/unfollow/", loginRequired, followController.ProfileUnfollow)
	r.GET("/follow/", loginRequired, followController.FollowIndex)

	r.GET("/create/", loginRequired, postController.PostCreateForm)
	r.POST("/create/", loginRequired, postController.PostCreate)
	r.GET("/posts/:id/", postController.PostDetail)
	r.GET("/posts/:id/edit/", loginRequired, postController.PostEditForm)
	r.POST("/posts/:id/edit/", loginRequired, postController.PostEdit)
	r.POST("/posts/:id/delete/", loginRequired, postController.PostDelete)
	r.POST("/posts/:id/comment/", loginRequired, postController.AddComment)

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
	auth.GET("/signup/", authController.SignupForm)
	auth.POST("/signup/", authController.Signup)
	auth.GET("/login/", authController.LoginForm)
	auth.POST("/login/", authController.Login)
	auth.GET("/logout/", authController.Logout)
	auth.POST("/logout/", authController.Logout)

	api := r.Group("/api/v1")
	api.GET("/posts", postController.APIListPosts)
	api.GET("/posts/:id", postController.APIGetPost)
	api.GET("/groups", postController.APIListGroups)
	api.GET("/captcha", authController.Captcha)

	apiAuth := api.Group("/auth")
	apiAuth.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
	apiAuth.POST("/token", authController.APIToken)
	apiAuth.POST("/logout", middleware.APIAuthRequired(), authController.APIRevokeToken)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		controllers.NotFound(ctx)
	})

	return r
}
