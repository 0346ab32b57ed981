package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents a blog author or reader. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"-"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt    time.Time `json:"-"`
	Posts        []Post    `gorm:"foreignKey:AuthorID" json:"-"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u User) String() string {
	return u.Username
}

// BeforeCreate hook ensures the join timestamp is set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
	return nil
}
