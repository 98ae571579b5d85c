package models

import "time"

// Bookmark links a user to a story they saved. Duplicate rows per
// (user, story) are allowed; every click records a bookmark.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	StoryID   uint      `gorm:"index;not null" json:"story_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Story Story `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"story,omitempty"`
}
