package models

import "time"

// Comment represents a reply to a post.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   uint      `gorm:"index;not null" json:"post_id"`
	AuthorID uint      `gorm:"index;not null" json:"author_id"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Created  time.Time `gorm:"autoCreateTime;index" json:"created"`
}
