package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ceritaku/server/models"
	"github.com/ceritaku/server/utils"
)

// BookmarkController manages the current user's saved stories.
type BookmarkController struct {
	db *gorm.DB
}

// NewBookmarkController creates a BookmarkController.
func NewBookmarkController(db *gorm.DB) *BookmarkController {
	return &BookmarkController{db: db}
}

// List returns the current user's bookmarks with each story eager-loaded
// alongside its owner, category and images.
func (b *BookmarkController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Non-nil so an empty list serializes as [] rather than null.
	bookmarks := make([]models.Bookmark, 0)
	err := b.db.Model(&models.Bookmark{}).
		Preload("Story").
		Preload("Story.User").
		Preload("Story.Category").
		Preload("Story.ContentImages").
		Where("user_id = ?", userID).
		Find(&bookmarks).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list bookmarks")
		return
	}

	utils.Success(ctx, "Bookmarks retrieved successfully.", bookmarks)
}

// Store bookmarks a story for the current user. Duplicates are allowed; each
// click records a row.
func (b *BookmarkController) Store(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		StoryID uint `form:"story_id" json:"story_id"`
	}
	if err := ctx.ShouldBind(&req); err != nil || req.StoryID == 0 {
		utils.ValidationError(ctx, map[string]string{"story_id": "The story id field is required."})
		return
	}

	var count int64
	if err := b.db.Model(&models.Story{}).Where("id = ?", req.StoryID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to check story")
		return
	}
	if count == 0 {
		utils.ValidationError(ctx, map[string]string{"story_id": "The selected story id is invalid."})
		return
	}

	bookmark := models.Bookmark{UserID: userID, StoryID: req.StoryID}
	if err := b.db.Create(&bookmark).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create bookmark")
		return
	}

	utils.Created(ctx, "Bookmark created successfully.", bookmark)
}

// Destroy removes a bookmark owned by the current user; anything else is a 404.
func (b *BookmarkController) Destroy(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var bookmark models.Bookmark
	err := b.db.Where("user_id = ? AND id = ?", userID, ctx.Param("id")).First(&bookmark).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "Bookmark not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load bookmark")
		return
	}

	if err := b.db.Delete(&bookmark).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete bookmark")
		return
	}

	utils.Success(ctx, "Bookmark deleted successfully.", nil)
}
