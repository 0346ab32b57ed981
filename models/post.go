package models

import (
	"time"
	"unicode/utf8"
)

// PostTitleLength is how many characters of the text stand in for a post's title.
const PostTitleLength = 15

// Post is a single authored text entry. AuthorID never changes after creation.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
	AuthorID uint      `gorm:"index;not null" json:"author_id"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id"`
	Group    *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group,omitempty"`
	Image    string    `gorm:"size:255" json:"image,omitempty"`
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

// PostOrder is the default listing order, newest first.
const PostOrder = "pub_date DESC, id DESC"

func (p Post) String() string {
	if utf8.RuneCountInString(p.Text) <= PostTitleLength {
		return p.Text
	}
	return string([]rune(p.Text)[:PostTitleLength])
}

// EditableBy reports whether userID may change this post.
func (p Post) EditableBy(userID uint) bool {
	return userID != 0 && p.AuthorID == userID
}
