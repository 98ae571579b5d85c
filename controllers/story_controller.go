package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ceritaku/server/models"
	"github.com/ceritaku/server/utils"
)

// Page sizes mirror the client grid layouts.
const (
	storyPageSize   = 12
	latestPageSize  = 6
	similarPageSize = 3
)

// StoryController manages story CRUD, the browse/sort listings and content
// image attachments.
type StoryController struct {
	db *gorm.DB
}

// NewStoryController creates a StoryController.
func NewStoryController(db *gorm.DB) *StoryController {
	return &StoryController{db: db}
}

// normalizeImages keeps content_images serializing as [] instead of null
// when a story has no attachments.
func normalizeImages(story *models.Story) {
	if story.ContentImages == nil {
		story.ContentImages = make([]models.ContentImage, 0)
	}
}

func (s *StoryController) withRelations() *gorm.DB {
	return s.db.Model(&models.Story{}).
		Preload("User").
		Preload("Category").
		Preload("ContentImages")
}

// respondStoryPage paginates q and answers 404 when the requested page is
// empty; empty result sets are surfaced as errors across all listings.
func (s *StoryController) respondStoryPage(ctx *gin.Context, q *gorm.DB, pageSize int, emptyMsg, foundMsg string) {
	page := parsePage(ctx.Query("page"))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count stories")
		return
	}

	// Explicit column list keeps GORM from enumerating read-only fields
	// (bookmarks_count has no column) when a join is present. The Count above
	// must stay unselected or it would wrap as count(stories.*).
	var stories []models.Story
	if err := q.Select("stories.*").Offset((page - 1) * pageSize).Limit(pageSize).Find(&stories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list stories")
		return
	}

	if len(stories) == 0 {
		utils.Error(ctx, http.StatusNotFound, emptyMsg)
		return
	}
	for i := range stories {
		normalizeImages(&stories[i])
	}

	utils.Success(ctx, foundMsg, gin.H{
		"items":      stories,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// Index lists stories with optional case-insensitive search across title,
// content and category name.
func (s *StoryController) Index(ctx *gin.Context) {
	q := s.withRelations()

	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		q = q.Joins("LEFT JOIN categories ON categories.id = stories.category_id").
			Where("LOWER(stories.title) LIKE ? OR LOWER(stories.content) LIKE ? OR LOWER(categories.name) LIKE ?",
				needle, needle, needle)
	}

	s.respondStoryPage(ctx, q, storyPageSize, "No stories found.", "Stories retrieved successfully.")
}

// contentImageFiles collects the multipart image attachments; both the
// bracketed and plain field names are accepted.
func contentImageFiles(ctx *gin.Context) []*multipart.FileHeader {
	form, err := ctx.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	files := form.File["content_images[]"]
	if len(files) == 0 {
		files = form.File["content_images"]
	}
	return files
}

func formIDList(ctx *gin.Context, field string) []uint {
	values := ctx.PostFormArray(field + "[]")
	if len(values) == 0 {
		values = ctx.PostFormArray(field)
	}
	ids := make([]uint, 0, len(values))
	for _, v := range values {
		if id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids
}

type storyInput struct {
	categoryID uint
	title      string
	content    string
	images     []*multipart.FileHeader
}

// bindStoryInput validates the shared create/update fields and attachments.
func (s *StoryController) bindStoryInput(ctx *gin.Context) (*storyInput, map[string]string) {
	errs := map[string]string{}

	var categoryID uint
	rawCategory := strings.TrimSpace(ctx.PostForm("category_id"))
	if rawCategory == "" {
		errs["category_id"] = "The category id field is required."
	} else if id, err := strconv.ParseUint(rawCategory, 10, 64); err != nil {
		errs["category_id"] = "The category id must be an integer."
	} else {
		categoryID = uint(id)
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil || count == 0 {
			errs["category_id"] = "The selected category id is invalid."
		}
	}

	title := utils.SanitizeStrict(strings.TrimSpace(ctx.PostForm("title")))
	if title == "" {
		errs["title"] = "The title field is required."
	} else if len(title) > 255 {
		errs["title"] = "The title may not be greater than 255 characters."
	}

	content := utils.Sanitize(ctx.PostForm("content"))
	if strings.TrimSpace(content) == "" {
		errs["content"] = "The content field is required."
	}

	images := contentImageFiles(ctx)
	if len(images) > models.MaxContentImages {
		errs["content_images"] = "A story may not have more than 5 images."
	}
	for _, fh := range images {
		if err := utils.ValidateImageUpload(fh); err != nil {
			errs["content_images"] = err.Error()
			break
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &storyInput{categoryID: categoryID, title: title, content: content, images: images}, nil
}

// storeImages persists the uploaded files and their attachment rows inside tx.
// Stored paths are returned so callers can clean up files when tx rolls back.
func storeImages(tx *gorm.DB, storyID uint, files []*multipart.FileHeader) ([]string, error) {
	stored := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := utils.SaveUpload(fh, "content_images")
		if err != nil {
			return stored, err
		}
		stored = append(stored, path)
		img := models.ContentImage{
			StoryID:      storyID,
			Path:         path,
			OriginalName: fh.Filename,
		}
		if err := tx.Create(&img).Error; err != nil {
			return stored, err
		}
	}
	return stored, nil
}

// Store creates a story with up to five image attachments in one transaction.
func (s *StoryController) Store(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	input, errs := s.bindStoryInput(ctx)
	if errs != nil {
		utils.ValidationError(ctx, errs)
		return
	}

	story := models.Story{
		UserID:     userID,
		CategoryID: input.categoryID,
		Title:      input.title,
		Content:    input.content,
	}

	var storedPaths []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&story).Error; err != nil {
			return err
		}
		paths, err := storeImages(tx, story.ID, input.images)
		storedPaths = paths
		return err
	})
	if err != nil {
		for _, path := range storedPaths {
			utils.DeleteStored(path)
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to create story")
		return
	}

	if err := s.db.Preload("ContentImages").First(&story, story.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
		return
	}
	normalizeImages(&story)

	utils.Created(ctx, "Story created successfully.", story)
}

// Show returns a single story with its owner, category and images.
func (s *StoryController) Show(ctx *gin.Context) {
	var story models.Story
	if err := s.withRelations().First(&story, "stories.id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "Story not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
		return
	}

	normalizeImages(&story)
	utils.Success(ctx, "Story retrieved successfully.", story)
}

// SimilarStories lists stories sharing the subject's category, newest first,
// never including the subject itself.
func (s *StoryController) SimilarStories(ctx *gin.Context) {
	var story models.Story
	if err := s.db.First(&story, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "Story not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
		return
	}

	q := s.withRelations().
		Where("stories.category_id = ? AND stories.id != ?", story.CategoryID, story.ID).
		Order("stories.created_at DESC")

	s.respondStoryPage(ctx, q, similarPageSize, "No similar stories found.", "Similar stories retrieved successfully.")
}

// Update edits a story: requested image deletions run first, the five-image
// cap is enforced on the remainder, then fields and new images are persisted.
func (s *StoryController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var story models.Story
	if err := s.db.First(&story, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "Story not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
		return
	}
	if story.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, "You can only update your own stories.")
		return
	}

	input, errs := s.bindStoryInput(ctx)
	if errs != nil {
		utils.ValidationError(ctx, errs)
		return
	}

	// Delete requested images first; ids not belonging to this story are
	// ignored rather than rejected.
	for _, imageID := range formIDList(ctx, "delete_images") {
		var img models.ContentImage
		if err := s.db.First(&img, imageID).Error; err != nil {
			continue
		}
		if img.StoryID != story.ID {
			continue
		}
		if err := s.db.Delete(&img).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to delete image")
			return
		}
		utils.DeleteStored(img.Path)
	}

	var existing int64
	if err := s.db.Model(&models.ContentImage{}).Where("story_id = ?", story.ID).Count(&existing).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count images")
		return
	}
	if int(existing)+len(input.images) > models.MaxContentImages {
		utils.Error(ctx, http.StatusBadRequest, "A story cannot have more than 5 images.")
		return
	}

	var storedPaths []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"category_id": input.categoryID,
			"title":       input.title,
			"content":     input.content,
		}
		if err := tx.Model(&story).Updates(updates).Error; err != nil {
			return err
		}
		paths, err := storeImages(tx, story.ID, input.images)
		storedPaths = paths
		return err
	})
	if err != nil {
		for _, path := range storedPaths {
			utils.DeleteStored(path)
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to update story")
		return
	}

	if err := s.db.Preload("ContentImages").First(&story, story.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
		return
	}
	normalizeImages(&story)

	utils.Success(ctx, "Story updated successfully.", story)
}

// Destroy removes a story, its attachment rows and their backing files.
// Rows go in one transaction; files are removed after commit.
func (s *StoryController) Destroy(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var story models.Story
	if err := s.db.Preload("ContentImages").First(&story, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "Story not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
		return
	}
	if story.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, "You can only delete your own stories.")
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", story.ID).Delete(&models.ContentImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", story.ID).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		return tx.Delete(&story).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete story")
		return
	}

	for _, img := range story.ContentImages {
		utils.DeleteStored(img.Path)
	}

	utils.Success(ctx, "Story deleted successfully.", nil)
}

// DeleteImage removes a single attachment row and its backing file.
func (s *StoryController) DeleteImage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var img models.ContentImage
	if err := s.db.First(&img, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "Image not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load image")
		return
	}

	var story models.Story
	if err := s.db.First(&story, img.StoryID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
		return
	}
	if story.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, "You can only delete images from your own stories.")
		return
	}

	if err := s.db.Delete(&img).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete image")
		return
	}
	utils.DeleteStored(img.Path)

	utils.Success(ctx, "Image deleted successfully.", nil)
}

// BatchDeleteImages removes a set of attachment rows and their files. Any
// unknown id fails the whole request before anything is deleted.
func (s *StoryController) BatchDeleteImages(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		ImageIDs []uint `json:"image_ids"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || len(req.ImageIDs) == 0 {
		utils.ValidationError(ctx, map[string]string{"image_ids": "The image ids field is required."})
		return
	}

	var images []models.ContentImage
	if err := s.db.Find(&images, req.ImageIDs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load images")
		return
	}
	if len(images) != len(req.ImageIDs) {
		utils.Error(ctx, http.StatusNotFound, "Image not found.")
		return
	}

	for _, img := range images {
		var story models.Story
		if err := s.db.First(&story, img.StoryID).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
			return
		}
		if story.UserID != userID {
			utils.Error(ctx, http.StatusForbidden, "You can only delete images from your own stories.")
			return
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&models.ContentImage{}, req.ImageIDs).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete images")
		return
	}

	for _, img := range images {
		utils.DeleteStored(img.Path)
	}

	utils.Success(ctx, "Images deleted successfully.", nil)
}

// ByCategory lists every story in a category, unpaginated.
func (s *StoryController) ByCategory(ctx *gin.Context) {
	var stories []models.Story
	err := s.db.Model(&models.Story{}).
		Preload("User").
		Preload("ContentImages").
		Where("category_id = ?", ctx.Param("categoryId")).
		Find(&stories).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list stories")
		return
	}

	if len(stories) == 0 {
		utils.Error(ctx, http.StatusNotFound, "No stories found for this category.")
		return
	}
	for i := range stories {
		normalizeImages(&stories[i])
	}

	utils.Success(ctx, "Stories retrieved successfully.", stories)
}

// MyStories lists the authenticated user's stories, unpaginated. The user
// payload rides along even when the list is empty.
func (s *StoryController) MyStories(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "User not found.")
		return
	}

	var stories []models.Story
	err := s.db.Model(&models.Story{}).
		Preload("Category").
		Preload("ContentImages").
		Where("user_id = ?", userID).
		Find(&stories).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list stories")
		return
	}

	if len(stories) == 0 {
		utils.Respond(ctx, http.StatusNotFound, "You have no stories yet.", gin.H{"user": userPayload(user)})
		return
	}
	for i := range stories {
		normalizeImages(&stories[i])
	}

	utils.Success(ctx, "Your stories retrieved successfully.", gin.H{
		"items": stories,
		"user":  userPayload(user),
	})
}

// Newest lists stories newest first, 12 per page.
func (s *StoryController) Newest(ctx *gin.Context) {
	q := s.withRelations().Order("stories.created_at DESC")
	s.respondStoryPage(ctx, q, storyPageSize, "No stories available yet.", "Newest stories retrieved successfully.")
}

// Latest lists stories newest first, 6 per page.
func (s *StoryController) Latest(ctx *gin.Context) {
	q := s.withRelations().Order("stories.created_at DESC")
	s.respondStoryPage(ctx, q, latestPageSize, "No stories available yet.", "Latest stories retrieved successfully.")
}

// Popular orders stories by descending bookmark count, 12 per page.
func (s *StoryController) Popular(ctx *gin.Context) {
	page := parsePage(ctx.Query("page"))

	var total int64
	if err := s.db.Model(&models.Story{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count stories")
		return
	}

	var stories []models.Story
	err := s.db.Model(&models.Story{}).
		Select("stories.*, COUNT(bookmarks.id) AS bookmarks_count").
		Joins("LEFT JOIN bookmarks ON bookmarks.story_id = stories.id").
		Group("stories.id").
		Order("bookmarks_count DESC").
		Preload("User").
		Preload("Category").
		Preload("ContentImages").
		Offset((page - 1) * storyPageSize).
		Limit(storyPageSize).
		Find(&stories).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list stories")
		return
	}

	if len(stories) == 0 {
		utils.Error(ctx, http.StatusNotFound, "No popular stories available yet.")
		return
	}
	for i := range stories {
		normalizeImages(&stories[i])
	}

	utils.Success(ctx, "Popular stories retrieved successfully.", gin.H{
		"items":      stories,
		"pagination": paginationMeta(page, storyPageSize, total),
	})
}

// AlphaAsc lists stories by title A-Z, 12 per page.
func (s *StoryController) AlphaAsc(ctx *gin.Context) {
	q := s.withRelations().Order("stories.title ASC")
	s.respondStoryPage(ctx, q, storyPageSize, "No stories available yet.", "Stories retrieved successfully.")
}

// AlphaDesc lists stories by title Z-A, 12 per page.
func (s *StoryController) AlphaDesc(ctx *gin.Context) {
	q := s.withRelations().Order("stories.title DESC")
	s.respondStoryPage(ctx, q, storyPageSize, "No stories available yet.", "Stories retrieved successfully.")
}
