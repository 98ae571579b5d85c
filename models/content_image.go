package models

import "time"

// ContentImage maps a story to a stored file. Path is relative to the storage
// root and collision-resistant; OriginalName keeps the client-supplied filename
// as metadata only.
type ContentImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StoryID      uint      `gorm:"index;not null" json:"story_id"`
	Path         string    `gorm:"size:1024;not null" json:"path"`
	OriginalName string    `gorm:"size:255" json:"original_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
