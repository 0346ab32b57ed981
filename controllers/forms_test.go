package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindSignup(t *testing.T, form url.Values) SignupForm {
	t.Helper()
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/auth/signup/", strings.NewReader(form.Encode()))
	ctx.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var f SignupForm
	if err := ctx.ShouldBind(&f); err != nil {
		f.Errors = bindingErrors(err)
	}
	f.validate()
	return f
}

func TestSignupFormValid(t *testing.T) {
	f := bindSignup(t, url.Values{
		"username": {"leo.tolstoy+1"}, "email": {"leo@example.com"},
		"password1": {"war&peace1869"}, "password2": {"war&peace1869"},
	})
	assert.Empty(t, f.Errors)
	assert.Equal(t, "leo.tolstoy+1", f.Username)
}

func TestSignupFormErrors(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing username", url.Values{"password1": {"abcdefgh1"}, "password2": {"abcdefgh1"}}, "Username: This field is required."},
		{"short username", url.Values{"username": {"ab"}, "password1": {"abcdefgh1"}, "password2": {"abcdefgh1"}}, "at least 3 characters"},
		{"bad characters", url.Values{"username": {"no spaces"}, "password1": {"abcdefgh1"}, "password2": {"abcdefgh1"}}, "enter a valid username"},
		{"bad email", url.Values{"username": {"leo"}, "email": {"nope"}, "password1": {"abcdefgh1"}, "password2": {"abcdefgh1"}}, "Email: enter a valid email address."},
		{"mismatch", url.Values{"username": {"leo"}, "password1": {"abcdefgh1"}, "password2": {"abcdefgh2"}}, "didn't match"},
		{"short password", url.Values{"username": {"leo"}, "password1": {"short1"}, "password2": {"short1"}}, "too short"},
		{"numeric password", url.Values{"username": {"leo"}, "password1": {"12345678"}, "password2": {"12345678"}}, "entirely numeric"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := bindSignup(t, tc.form)
			require.NotEmpty(t, f.Errors)
			assert.Contains(t, strings.Join(f.Errors, "\n"), tc.want)
		})
	}
}

func TestUsernamePatternAllowsUnicodeLetters(t *testing.T) {
	assert.True(t, usernamePattern.MatchString("Лев_Толстой"))
	assert.False(t, usernamePattern.MatchString("tab\there"))
}

func init() {
	gin.SetMode(gin.TestMode)
}
