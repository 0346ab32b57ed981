package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

// html renders a page with the values every layout needs.
func html(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = middleware.UserFrom(ctx)
	data["Year"] = time.Now().Year()
	data["Path"] = ctx.Request.URL.Path
	ctx.HTML(status, name, data)
}

// NotFound renders the not-found page.
func NotFound(ctx *gin.Context) {
	html(ctx, http.StatusNotFound, "core/404.html", nil)
}

// serverError logs err and renders the error page.
func serverError(ctx *gin.Context, msg string, err error) {
	utils.Logger.Error(msg, zap.Error(err), zap.String("path", ctx.Request.URL.Path))
	_ = ctx.Error(err)
	html(ctx, http.StatusInternalServerError, "core/500.html", nil)
}

// lookupFailed renders 404 for missing rows and 500 for anything else.
func lookupFailed(ctx *gin.Context, msg string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(ctx)
		return
	}
	serverError(ctx, msg, err)
}

func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func profileURL(username string) string { return "/profile/" + username + "/" }

func postURL(id uint) string { return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/" }

// postLister pages posts at the database with the shared Paginator.
type postLister struct {
	db      *gorm.DB
	perPage int
}

func (l postLister) list(ctx *gin.Context, scope func(*gorm.DB) *gorm.DB) (*utils.Page[models.Post], error) {
	db := l.db.WithContext(ctx.Request.Context())

	var count int64
	if err := db.Model(&models.Post{}).Scopes(scope).Count(&count).Error; err != nil {
		return nil, err
	}
	p := utils.NewPaginator(count, l.perPage)
	number := p.Number(ctx.Query("page"))
	offset, limit := p.Bounds(number)

	var posts []models.Post
	if limit > 0 {
		err := db.Scopes(scope).
			Preload("Author").
			Preload("Group").
			Order(models.PostOrder).
			Offset(offset).
			Limit(limit).
			Find(&posts).Error
		if err != nil {
			return nil, err
		}
	}
	return utils.NewPage(p, number, posts), nil
}

func allPosts(tx *gorm.DB) *gorm.DB { return tx }

func byAuthor(authorID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB { return tx.Where("author_id = ?", authorID) }
}

func byGroup(groupID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB { return tx.Where("group_id = ?", groupID) }
}
