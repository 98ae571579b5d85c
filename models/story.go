package models

import "time"

// Story is a user-authored post with a category and up to five attached images.
type Story struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	CategoryID uint      `gorm:"index;not null" json:"category_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User          User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	Category      Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"category,omitempty"`
	ContentImages []ContentImage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"content_images"`
	Bookmarks     []Bookmark     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Populated only by the popularity query.
	BookmarksCount int64 `gorm:"->;-:migration" json:"bookmarks_count,omitempty"`
}

// MaxContentImages caps how many images a story may carry at any time.
const MaxContentImages = 5
