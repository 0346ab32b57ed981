package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

// FollowController manages subscriptions between users and the feed they produce.
type FollowController struct {
	db *gorm.DB
	postLister
}

// NewFollowController creates a new FollowController instance.
func NewFollowController(db *gorm.DB, perPage int) *FollowController {
	return &FollowController{db: db, postLister: postLister{db: db, perPage: perPage}}
}

// FollowIndex lists posts of every author the current user follows.
func (f *FollowController) FollowIndex(ctx *gin.Context) {
	viewerID := middleware.ViewerID(ctx)
	page, err := f.list(ctx, func(tx *gorm.DB) *gorm.DB {
		followed := f.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", viewerID)
		return tx.Where("author_id IN (?)", followed)
	})
	if err != nil {
		serverError(ctx, "list followed posts failed", err)
		return
	}
	html(ctx, http.StatusOK, "posts/follow.html", gin.H{"Page": page})
}

// ProfileFollow subscribes the current user to the author. Following yourself
// is ignored and following twice keeps a single subscription.
func (f *FollowController) ProfileFollow(ctx *gin.Context) {
	author, ok := f.author(ctx)
	if !ok {
		return
	}
	user := middleware.UserFrom(ctx)
	if user.ID != author.ID {
		follow := models.Follow{UserID: user.ID, AuthorID: author.ID}
		if err := f.db.Where(&follow).FirstOrCreate(&follow).Error; err != nil {
			// a concurrent request may have inserted the same pair
			var n int64
			f.db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", user.ID, author.ID).Count(&n)
			if n == 0 {
				serverError(ctx, "follow failed", err)
				return
			}
		} else {
			utils.Logger.Debug("follow", zap.String("user", user.Username), zap.String("author", author.Username))
		}
	}
	ctx.Redirect(http.StatusFound, profileURL(author.Username))
}

// ProfileUnfollow removes the subscription if there is one.
func (f *FollowController) ProfileUnfollow(ctx *gin.Context) {
	author, ok := f.author(ctx)
	if !ok {
		return
	}
	err := f.db.Where("user_id = ? AND author_id = ?", middleware.ViewerID(ctx), author.ID).Delete(&models.Follow{}).Error
	if err != nil {
		serverError(ctx, "unfollow failed", err)
		return
	}
	ctx.Redirect(http.StatusFound, profileURL(author.Username))
}

func (f *FollowController) author(ctx *gin.Context) (models.User, bool) {
	var author models.User
	if err := f.db.Where("username = ?", ctx.Param("username")).First(&author).Error; err != nil {
		lookupFailed(ctx, "load author failed", err)
		return author, false
	}
	return author, true
}
