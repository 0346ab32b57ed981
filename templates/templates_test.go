package templates

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

func TestNewParsesEveryPage(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	for _, page := range Pages {
		assert.Contains(t, r.pages, page)
	}
	assert.Panics(t, func() { r.Instance("posts/missing.html", nil) })
}

func TestIndexRendersPostsAndPager(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	group := &models.Group{ID: 1, Title: "Cats", Slug: "cats"}
	posts := make([]models.Post, 13)
	for i := range posts {
		posts[i] = models.Post{
			ID:      uint(i + 1),
			Text:    "line one\nline two<script>alert(1)</script>",
			PubDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Author:  models.User{Username: "leo", FirstName: "Leo", LastName: "T"},
			Group:   group,
		}
	}
	page := utils.Paginate(posts, "1", 10)

	w := httptest.NewRecorder()
	err = r.Instance("posts/index.html", gin.H{"Page": page, "Year": 2024}).Render(w)
	require.NoError(t, err)

	body := w.Body.String()
	assert.Contains(t, body, "Latest updates on the site")
	assert.Contains(t, body, `href="/group/cats/"`)
	assert.Contains(t, body, `href="?page=2"`)
	assert.Contains(t, body, "line one<br>")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "Log in")
}

func TestMediaFuncOverride(t *testing.T) {
	r, err := New(map[string]any{"media": func(rel string) string { return "/uploads/" + rel }})
	require.NoError(t, err)

	post := models.Post{ID: 3, Text: "pic", Image: "posts/a.gif", Author: models.User{Username: "leo"}}
	w := httptest.NewRecorder()
	err = r.Instance("posts/post_detail.html", gin.H{"Post": post, "Year": 2024}).Render(w)
	require.NoError(t, err)
	assert.Contains(t, w.Body.String(), `src="/uploads/posts/a.gif"`)
}
