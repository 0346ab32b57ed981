package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

// PostController serves the post listings, the post page and post authoring.
type PostController struct {
	db    *gorm.DB
	media utils.MediaStorage
	postLister
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, media utils.MediaStorage, perPage int) *PostController {
	return &PostController{db: db, media: media, postLister: postLister{db: db, perPage: perPage}}
}

// Index lists every post, newest first.
func (p *PostController) Index(ctx *gin.Context) {
	page, err := p.list(ctx, allPosts)
	if err != nil {
		serverError(ctx, "list posts failed", err)
		return
	}
	html(ctx, http.StatusOK, "posts/index.html", gin.H{"Page": page})
}

// GroupPosts lists the posts of one group.
func (p *PostController) GroupPosts(ctx *gin.Context) {
	var group models.Group
	if err := p.db.Where("slug = ?", ctx.Param("slug")).First(&group).Error; err != nil {
		lookupFailed(ctx, "load group failed", err)
		return
	}
	page, err := p.list(ctx, byGroup(group.ID))
	if err != nil {
		serverError(ctx, "list group posts failed", err)
		return
	}
	html(ctx, http.StatusOK, "posts/group_list.html", gin.H{"Group": group, "Page": page})
}

// Profile lists the posts of one author together with follow state.
func (p *PostController) Profile(ctx *gin.Context) {
	var author models.User
	if err := p.db.Where("username = ?", ctx.Param("username")).First(&author).Error; err != nil {
		lookupFailed(ctx, "load author failed", err)
		return
	}
	page, err := p.list(ctx, byAuthor(author.ID))
	if err != nil {
		serverError(ctx, "list author posts failed", err)
		return
	}

	var followers, following int64
	p.db.Model(&models.Follow{}).Where("author_id = ?", author.ID).Count(&followers)
	p.db.Model(&models.Follow{}).Where("user_id = ?", author.ID).Count(&following)

	isFollowing := false
	if viewer := middleware.UserFrom(ctx); viewer != nil && viewer.ID != author.ID {
		var n int64
		p.db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", viewer.ID, author.ID).Count(&n)
		isFollowing = n > 0
	}

	html(ctx, http.StatusOK, "posts/profile.html", gin.H{
		"Author":         author,
		"Page":           page,
		"Following":      isFollowing,
		"FollowersCount": followers,
		"FollowingCount": following,
	})
}

// PostDetail shows one post with its comments.
func (p *PostController) PostDetail(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	var comments []models.Comment
	if err := p.db.Preload("Author").Where("post_id = ?", post.ID).Order("created ASC, id ASC").Find(&comments).Error; err != nil {
		serverError(ctx, "load comments failed", err)
		return
	}
	var authorPosts int64
	p.db.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&authorPosts)

	html(ctx, http.StatusOK, "posts/post_detail.html", gin.H{
		"Post":             post,
		"Comments":         comments,
		"AuthorPostsCount": authorPosts,
		"CanEdit":          post.EditableBy(middleware.ViewerID(ctx)),
	})
}

// PostCreateForm shows an empty post form.
func (p *PostController) PostCreateForm(ctx *gin.Context) {
	p.renderForm(ctx, &PostForm{}, false, 0)
}

// PostCreate publishes a post by the current user.
func (p *PostController) PostCreate(ctx *gin.Context) {
	user := middleware.UserFrom(ctx)
	form := bindPostForm(ctx, p.db)
	if form.Valid() && form.file != nil {
		rel, err := p.media.SaveImage(form.file)
		if err != nil {
			form.Errors = append(form.Errors, "Image: "+err.Error())
		}
		form.Image = rel
	}
	if !form.Valid() {
		p.renderForm(ctx, form, false, 0)
		return
	}

	post := models.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		GroupID:  form.group,
		Image:    form.Image,
	}
	if err := p.db.Create(&post).Error; err != nil {
		_ = p.media.Delete(form.Image)
		serverError(ctx, "create post failed", err)
		return
	}
	utils.InvalidateIndexPage()
	utils.Logger.Info("post created", zap.Uint("post_id", post.ID), zap.String("author", user.Username))
	ctx.Redirect(http.StatusFound, profileURL(user.Username))
}

// PostEditForm shows the form prefilled with the post; only the author may edit.
func (p *PostController) PostEditForm(ctx *gin.Context) {
	post, ok := p.authorPost(ctx)
	if !ok {
		return
	}
	p.renderForm(ctx, postFormFrom(post), true, post.ID)
}

// PostEdit saves the author's changes. The author of a post never changes.
func (p *PostController) PostEdit(ctx *gin.Context) {
	post, ok := p.authorPost(ctx)
	if !ok {
		return
	}
	form := bindPostForm(ctx, p.db)
	image := post.Image
	if form.clear {
		image = ""
	}
	if form.Valid() && form.file != nil {
		rel, err := p.media.SaveImage(form.file)
		if err != nil {
			form.Errors = append(form.Errors, "Image: "+err.Error())
		}
		image = rel
	}
	if !form.Valid() {
		form.Image = post.Image
		p.renderForm(ctx, form, true, post.ID)
		return
	}

	err := p.db.Model(&post).Select("text", "group_id", "image").Updates(map[string]interface{}{
		"text":     form.Text,
		"group_id": form.group,
		"image":    image,
	}).Error
	if err != nil {
		if image != post.Image {
			_ = p.media.Delete(image)
		}
		serverError(ctx, "update post failed", err)
		return
	}
	if image != post.Image {
		if err := p.media.Delete(post.Image); err != nil {
			utils.Logger.Warn("remove replaced image failed", zap.String("image", post.Image), zap.Error(err))
		}
	}
	utils.InvalidateIndexPage()
	ctx.Redirect(http.StatusFound, postURL(post.ID))
}

// PostDelete removes the author's post with its comments and image.
func (p *PostController) PostDelete(ctx *gin.Context) {
	post, ok := p.authorPost(ctx)
	if !ok {
		return
	}
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		serverError(ctx, "delete post failed", err)
		return
	}
	if err := p.media.Delete(post.Image); err != nil {
		utils.Logger.Warn("remove post image failed", zap.String("image", post.Image), zap.Error(err))
	}
	utils.InvalidateIndexPage()
	ctx.Redirect(http.StatusFound, profileURL(post.Author.Username))
}

// AddComment attaches a comment by the current user and returns to the post.
func (p *PostController) AddComment(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	var form CommentForm
	if err := ctx.ShouldBind(&form); err == nil {
		if text := strings.TrimSpace(form.Text); text != "" {
			comment := models.Comment{PostID: post.ID, AuthorID: middleware.ViewerID(ctx), Text: text}
			if err := p.db.Create(&comment).Error; err != nil {
				serverError(ctx, "create comment failed", err)
				return
			}
		}
	}
	ctx.Redirect(http.StatusFound, postURL(post.ID))
}

func (p *PostController) loadPost(ctx *gin.Context) (models.Post, bool) {
	var post models.Post
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return post, false
	}
	if err := p.db.Preload("Author").Preload("Group").First(&post, id).Error; err != nil {
		lookupFailed(ctx, "load post failed", err)
		return post, false
	}
	return post, true
}

// authorPost loads the post and sends everyone but its author back to the post page.
func (p *PostController) authorPost(ctx *gin.Context) (models.Post, bool) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return post, false
	}
	if !post.EditableBy(middleware.ViewerID(ctx)) {
		ctx.Redirect(http.StatusFound, postURL(post.ID))
		return post, false
	}
	return post, true
}

func (p *PostController) renderForm(ctx *gin.Context, form *PostForm, isEdit bool, postID uint) {
	var groups []models.Group
	if err := p.db.Order("title").Find(&groups).Error; err != nil {
		serverError(ctx, "load groups failed", err)
		return
	}
	html(ctx, http.StatusOK, "posts/create_post.html", gin.H{
		"Form":   form,
		"Groups": groups,
		"IsEdit": isEdit,
		"PostID": postID,
	})
}

// APIListPosts returns one page of posts as JSON, optionally filtered by
// group slug or author username.
func (p *PostController) APIListPosts(ctx *gin.Context) {
	scope := allPosts
	if slug := strings.TrimSpace(ctx.Query("group")); slug != "" {
		var group models.Group
		if err := p.db.Where("slug = ?", slug).First(&group).Error; err != nil {
			p.apiLookupFailed(ctx, err, 40402, "group not found")
			return
		}
		scope = byGroup(group.ID)
	}
	if username := strings.TrimSpace(ctx.Query("author")); username != "" {
		var author models.User
		if err := p.db.Where("username = ?", username).First(&author).Error; err != nil {
			p.apiLookupFailed(ctx, err, 40403, "author not found")
			return
		}
		scope = byAuthor(author.ID)
	}
	page, err := p.list(ctx, scope)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}
	utils.Success(ctx, page)
}

// APIGetPost returns a single post with comments.
func (p *PostController) APIGetPost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}
	var post models.Post
	err := p.db.Preload("Author").Preload("Group").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created ASC, id ASC") }).
		Preload("Comments.Author").
		First(&post, id).Error
	if err != nil {
		p.apiLookupFailed(ctx, err, 40401, "post not found")
		return
	}
	utils.Success(ctx, post)
}

// APIListGroups returns every group.
func (p *PostController) APIListGroups(ctx *gin.Context) {
	var groups []models.Group
	if err := p.db.Order("title").Find(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to list groups")
		return
	}
	utils.Success(ctx, gin.H{"items": groups})
}

func (p *PostController) apiLookupFailed(ctx *gin.Context, err error, code int, msg string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, code, msg)
		return
	}
	utils.Logger.Error("api lookup failed", zap.Error(err))
	utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load data")
}
