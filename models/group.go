package models

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
)

const (
	GroupTitleMaxLength = 200
	GroupSlugMaxLength  = 100
)

// Group is a community posts can be published into.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}

func (g Group) String() string {
	return g.Title
}

// NewGroup validates the fields of a new group. An empty slug is derived
// from the title; a given one is normalized the same way.
func NewGroup(title, groupSlug, description string) (Group, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Group{}, errors.New("group title is required")
	}
	if utf8.RuneCountInString(title) > GroupTitleMaxLength {
		return Group{}, errors.New("group title is too long")
	}
	if strings.TrimSpace(groupSlug) == "" {
		groupSlug = title
	}
	groupSlug = slug.Make(groupSlug)
	if groupSlug == "" {
		return Group{}, errors.New("group slug is empty after normalization")
	}
	if len(groupSlug) > GroupSlugMaxLength {
		groupSlug = strings.Trim(groupSlug[:GroupSlugMaxLength], "-")
	}
	return Group{Title: title, Slug: groupSlug, Description: strings.TrimSpace(description)}, nil
}
