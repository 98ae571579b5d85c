package models

import (
	"time"

	"gorm.io/gorm"
)

// Category is a flat tag grouping stories.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Stories   []Story   `json:"-"`
}

// seedCategories is the stock category list installed on an empty table.
var seedCategories = []string{
	"Comedy",
	"Romance",
	"Horror",
	"Adventure",
	"Fiction",
	"Fantasy",
	"Drama",
	"Heartfelt",
	"Mystery",
}

// EnsureSeedCategories installs the stock categories when the table is empty.
func EnsureSeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, name := range seedCategories {
		if err := db.Create(&Category{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}
