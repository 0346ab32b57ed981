package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

const requiredMsg = "This field is required."

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+\-]+$`)

// PostForm backs the create and edit pages.
type PostForm struct {
	Text    string
	GroupID uint
	Image   string
	Errors  []string

	group *uint
	file  *multipart.FileHeader
	clear bool
}

// Valid reports whether binding produced no errors.
func (f *PostForm) Valid() bool { return len(f.Errors) == 0 }

func postFormFrom(post models.Post) *PostForm {
	f := &PostForm{Text: post.Text, Image: post.Image, group: post.GroupID}
	if post.GroupID != nil {
		f.GroupID = *post.GroupID
	}
	return f
}

// bindPostForm reads text, group and image from a urlencoded or multipart body.
func bindPostForm(ctx *gin.Context, db *gorm.DB) *PostForm {
	f := &PostForm{Text: strings.TrimSpace(ctx.PostForm("text"))}
	if f.Text == "" {
		f.Errors = append(f.Errors, "Text: "+requiredMsg)
	}

	if raw := strings.TrimSpace(ctx.PostForm("group")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || db.First(&models.Group{}, id).Error != nil {
			f.Errors = append(f.Errors, "Group: select a valid choice, that choice is not one of the available choices.")
		} else {
			gid := uint(id)
			f.group = &gid
			f.GroupID = gid
		}
	}

	fh, err := ctx.FormFile("image")
	switch {
	case err == nil:
		f.file = fh
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		f.Errors = append(f.Errors, "Image: the upload could not be read.")
	}
	f.clear = ctx.PostForm("image-clear") != ""
	return f
}

// CommentForm is the inline form on the post page.
type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

// SignupForm creates a new account.
type SignupForm struct {
	FirstName     string `form:"first_name" binding:"max=150"`
	LastName      string `form:"last_name" binding:"max=150"`
	Username      string `form:"username" binding:"required,min=3,max=150"`
	Email         string `form:"email" binding:"omitempty,email,max=254"`
	Password1     string `form:"password1" binding:"required"`
	Password2     string `form:"password2" binding:"required"`
	CaptchaID     string `form:"captcha_id"`
	CaptchaAnswer string `form:"captcha"`
	Errors        []string
}

func (f *SignupForm) validate() {
	f.Username = strings.TrimSpace(f.Username)
	if f.Username != "" && !usernamePattern.MatchString(f.Username) {
		f.Errors = append(f.Errors, "Username: enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if f.Password1 != "" && f.Password2 != "" && f.Password1 != f.Password2 {
		f.Errors = append(f.Errors, "Password confirmation: the two password fields didn't match.")
	} else if f.Password1 != "" {
		if err := utils.ValidatePassword(f.Password1); err != nil {
			f.Errors = append(f.Errors, "Password: "+err.Error())
		}
	}
}

// LoginForm authenticates an existing account.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Errors   []string
}

var fieldLabels = map[string]string{
	"Text":      "Text",
	"FirstName": "First name",
	"LastName":  "Last name",
	"Username":  "Username",
	"Email":     "Email",
	"Password1": "Password",
	"Password2": "Password confirmation",
	"Password":  "Password",
}

// bindingErrors turns gin binding failures into per-field messages.
func bindingErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"The submitted form could not be read."}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		if label == "" {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			out = append(out, label+": "+requiredMsg)
		case "email":
			out = append(out, label+": enter a valid email address.")
		case "min":
			out = append(out, fmt.Sprintf("%s: ensure this value has at least %s characters.", label, fe.Param()))
		case "max":
			out = append(out, fmt.Sprintf("%s: ensure this value has at most %s characters.", label, fe.Param()))
		default:
			out = append(out, label+": invalid value.")
		}
	}
	return out
}
