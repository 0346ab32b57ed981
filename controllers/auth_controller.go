package controllers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

const invalidLoginMsg = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// AuthController handles signup, login and logout.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// SignupForm shows the registration page.
func (a *AuthController) SignupForm(ctx *gin.Context) {
	a.renderSignup(ctx, &SignupForm{})
}

// Signup creates the account and logs the new user in.
func (a *AuthController) Signup(ctx *gin.Context) {
	var form SignupForm
	if err := ctx.ShouldBind(&form); err != nil {
		form.Errors = bindingErrors(err)
	}
	form.validate()

	if config.Get().RegisterCaptchaEnabled &&
		!utils.VerifyCaptcha(strings.TrimSpace(form.CaptchaID), strings.TrimSpace(form.CaptchaAnswer)) {
		form.Errors = append(form.Errors, "Captcha: the code is wrong or expired.")
	}

	if len(form.Errors) == 0 {
		var n int64
		a.db.Model(&models.User{}).Where("username = ?", form.Username).Count(&n)
		if n > 0 {
			form.Errors = append(form.Errors, "Username: a user with that username already exists.")
		}
	}
	if len(form.Errors) > 0 {
		a.renderSignup(ctx, &form)
		return
	}

	hash, err := utils.HashPassword(form.Password1)
	if err != nil {
		serverError(ctx, "hash password failed", err)
		return
	}
	user := models.User{
		Username:     form.Username,
		Email:        strings.TrimSpace(form.Email),
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		serverError(ctx, "create user failed", err)
		return
	}
	utils.Logger.Info("user signed up", zap.String("username", user.Username), zap.String("ip", ctx.ClientIP()))

	if err := a.startSession(ctx, user); err != nil {
		serverError(ctx, "start session failed", err)
		return
	}
	ctx.Redirect(http.StatusFound, "/")
}

func (a *AuthController) renderSignup(ctx *gin.Context, form *SignupForm) {
	data := gin.H{"Form": form}
	if config.Get().RegisterCaptchaEnabled {
		id, b64, err := utils.GenerateCaptcha()
		if err != nil {
			serverError(ctx, "generate captcha failed", err)
			return
		}
		data["CaptchaID"] = id
		data["CaptchaImage"] = template.URL(b64)
	}
	html(ctx, http.StatusOK, "users/signup.html", data)
}

// LoginForm shows the login page, keeping the "next" target.
func (a *AuthController) LoginForm(ctx *gin.Context) {
	html(ctx, http.StatusOK, "users/login.html", gin.H{"Form": &LoginForm{}, "Next": ctx.Query("next")})
}

// Login checks the credentials, sets the session cookie and redirects to a
// local "next" path or the index.
func (a *AuthController) Login(ctx *gin.Context) {
	next := ctx.PostForm("next")
	if next == "" {
		next = ctx.Query("next")
	}

	var form LoginForm
	if err := ctx.ShouldBind(&form); err != nil {
		form.Errors = bindingErrors(err)
		html(ctx, http.StatusOK, "users/login.html", gin.H{"Form": &form, "Next": next})
		return
	}
	user, err := a.authenticate(form.Username, form.Password)
	if err != nil {
		form.Errors = []string{invalidLoginMsg}
		html(ctx, http.StatusOK, "users/login.html", gin.H{"Form": &form, "Next": next})
		return
	}
	if err := a.startSession(ctx, user); err != nil {
		serverError(ctx, "start session failed", err)
		return
	}
	target := "/"
	if safe, ok := middleware.SafeNext(next); ok {
		target = safe
	}
	ctx.Redirect(http.StatusFound, target)
}

// Logout revokes the session token and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token := ctx.GetString(middleware.ContextTokenKey); token != "" {
		revoke(token)
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	ctx.Set(middleware.ContextUserKey, (*models.User)(nil))
	html(ctx, http.StatusOK, "users/logged_out.html", nil)
}

// APIToken exchanges credentials for a Bearer token.
func (a *AuthController) APIToken(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}
	user, err := a.authenticate(req.Username, req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}
	token, err := utils.GenerateToken(user.ID, user.Username, sessionTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// APIRevokeToken blacklists the Bearer token of the request.
func (a *AuthController) APIRevokeToken(ctx *gin.Context) {
	revoke(ctx.GetString(middleware.ContextTokenKey))
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Captcha returns a fresh captcha id and base64 image (data URI).
func (a *AuthController) Captcha(ctx *gin.Context) {
	id, b64, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to generate captcha")
		return
	}
	utils.Success(ctx, gin.H{"id": id, "image": b64})
}

var errBadCredentials = errors.New("bad credentials")

func (a *AuthController) authenticate(username, password string) (models.User, error) {
	var user models.User
	if err := a.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return user, errBadCredentials
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return user, errBadCredentials
	}
	return user, nil
}

func (a *AuthController) startSession(ctx *gin.Context, user models.User) error {
	ttl := sessionTTL()
	token, err := utils.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		return err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookieName, token, int(ttl.Seconds()), "/", "", false, true)
	return nil
}

func sessionTTL() time.Duration {
	return time.Duration(config.Get().SessionHours) * time.Hour
}

// revoke blacklists token until it would have expired anyway.
func revoke(token string) {
	if token == "" {
		return
	}
	expiresAt := time.Now().Add(sessionTTL())
	if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)
}
