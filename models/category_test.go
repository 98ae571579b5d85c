package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEnsureSeedCategories(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed_categories?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Category{}))

	require.NoError(t, EnsureSeedCategories(db))

	var count int64
	require.NoError(t, db.Model(&Category{}).Count(&count).Error)
	require.EqualValues(t, len(seedCategories), count)

	var comedy Category
	require.NoError(t, db.First(&comedy, "name = ?", "Comedy").Error)

	// Seeding again is a no-op.
	require.NoError(t, EnsureSeedCategories(db))
	require.NoError(t, db.Model(&Category{}).Count(&count).Error)
	require.EqualValues(t, len(seedCategories), count)
}
