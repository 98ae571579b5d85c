package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ceritaku/server/models"
	"github.com/ceritaku/server/utils"
)

// CategoryController provides CRUD over the flat category list.
type CategoryController struct {
	db *gorm.DB
}

// NewCategoryController creates a CategoryController.
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

// List returns all categories, unpaginated.
func (c *CategoryController) List(ctx *gin.Context) {
	var categories []models.Category
	if err := c.db.Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list categories")
		return
	}
	utils.Success(ctx, "Categories retrieved successfully.", categories)
}

func (c *CategoryController) validateName(name string, excludeID uint) map[string]string {
	if name == "" {
		return map[string]string{"name": "The name field is required."}
	}
	if len(name) > 64 {
		return map[string]string{"name": "The name may not be greater than 64 characters."}
	}
	q := c.db.Model(&models.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err == nil && count > 0 {
		return map[string]string{"name": "The name has already been taken."}
	}
	return nil
}

// Store creates a category with a globally unique name.
func (c *CategoryController) Store(ctx *gin.Context) {
	var req struct {
		Name string `form:"name" json:"name"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := utils.SanitizeStrict(strings.TrimSpace(req.Name))
	if errs := c.validateName(name, 0); errs != nil {
		utils.ValidationError(ctx, errs)
		return
	}

	category := models.Category{Name: name}
	if err := c.db.Create(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create category")
		return
	}

	utils.Created(ctx, "Category created successfully.", category)
}

// Show returns a category by id.
func (c *CategoryController) Show(ctx *gin.Context) {
	var category models.Category
	if err := c.db.First(&category, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "Category not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load category")
		return
	}
	utils.Success(ctx, "Category retrieved successfully.", category)
}

// Update renames a category; uniqueness excludes the category itself.
func (c *CategoryController) Update(ctx *gin.Context) {
	var category models.Category
	if err := c.db.First(&category, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "Category not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load category")
		return
	}

	var req struct {
		Name string `form:"name" json:"name"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := utils.SanitizeStrict(strings.TrimSpace(req.Name))
	if errs := c.validateName(name, category.ID); errs != nil {
		utils.ValidationError(ctx, errs)
		return
	}

	if err := c.db.Model(&category).Update("name", name).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update category")
		return
	}

	utils.Success(ctx, "Category updated successfully.", category)
}

// Destroy deletes a category. Stories referencing it are cascaded at the
// database level.
func (c *CategoryController) Destroy(ctx *gin.Context) {
	var category models.Category
	if err := c.db.First(&category, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "Category not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load category")
		return
	}

	if err := c.db.Delete(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete category")
		return
	}

	utils.Success(ctx, "Category deleted successfully.", nil)
}
