package models

import "time"

// Follow means UserID subscribes to posts written by AuthorID.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_follow_user_author" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	AuthorID  uint      `gorm:"not null;index;uniqueIndex:idx_follow_user_author" json:"author_id"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Group{}, &Post{}, &Comment{}, &Follow{}}
}
