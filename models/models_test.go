package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostString(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{text: "short", want: "short"},
		{text: "exactly fifteen", want: "exactly fifteen"},
		{text: "Тестовый пост с длинным текстом", want: "Тестовый пост с"},
		{text: "", want: ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Post{Text: tc.text}.String())
	}
}

func TestGroupString(t *testing.T) {
	assert.Equal(t, "Тестовая группа", Group{Title: "Тестовая группа", Slug: "test-slug"}.String())
}

func TestPostEditableBy(t *testing.T) {
	p := Post{AuthorID: 7}
	assert.True(t, p.EditableBy(7))
	assert.False(t, p.EditableBy(8))
	assert.False(t, p.EditableBy(0))
	assert.False(t, Post{}.EditableBy(0))
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{Username: "ada", FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "ada", User{Username: "ada"}.FullName())
}

func TestNewGroupDerivesSlug(t *testing.T) {
	g, err := NewGroup("  Cats & Dogs ", "", "pets")
	require.NoError(t, err)
	assert.Equal(t, "Cats & Dogs", g.Title)
	assert.Equal(t, "cats-and-dogs", g.Slug)
	assert.Equal(t, "pets", g.Description)

	g, err = NewGroup("Anything", "Test Slug", "")
	require.NoError(t, err)
	assert.Equal(t, "test-slug", g.Slug)

	_, err = NewGroup("   ", "", "")
	assert.Error(t, err)
	_, err = NewGroup(strings.Repeat("x", GroupTitleMaxLength+1), "", "")
	assert.Error(t, err)
}
