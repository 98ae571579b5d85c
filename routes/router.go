package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ceritaku/server/config"
	"github.com/ceritaku/server/controllers"
	"github.com/ceritaku/server/middleware"
	"github.com/ceritaku/server/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Stored files (profile and content images) are served from the storage root.
	r.Static("/static", cfg.StorageRoot)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, "ok", gin.H{"status": "ok"})
	})

	userController := controllers.NewUserController(db)
	categoryController := controllers.NewCategoryController(db)
	storyController := controllers.NewStoryController(db)
	bookmarkController := controllers.NewBookmarkController(db)

	api := r.Group("/api")

	// Account endpoints sit behind the rate limiter.
	authGroup := api.Group("")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", userController.Register)
	authGroup.POST("/login", userController.Login)

	// Public browse endpoints.
	api.GET("/stories", storyController.Index)
	api.GET("/stories/:id", storyController.Show)
	api.GET("/category/:categoryId", storyController.ByCategory)
	api.GET("/:id/similar", storyController.SimilarStories)
	api.GET("/newest", storyController.Newest)
	api.GET("/latest", storyController.Latest)
	api.GET("/popular", storyController.Popular)
	api.GET("/az", storyController.AlphaAsc)
	api.GET("/za", storyController.AlphaDesc)

	api.GET("/categories", categoryController.List)
	api.POST("/categories", categoryController.Store)
	api.GET("/categories/:id", categoryController.Show)
	api.PUT("/categories/:id", categoryController.Update)
	api.DELETE("/categories/:id", categoryController.Destroy)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.POST("/logout", userController.Logout)
	protected.PUT("/update-profile", userController.UpdateProfile)
	protected.POST("/update-image", userController.UpdateImage)
	protected.PUT("/change-password", userController.ChangePassword)
	protected.GET("/user/:id", userController.GetUserByID)

	protected.GET("/stories/my-stories", storyController.MyStories)
	protected.POST("/stories", storyController.Store)
	protected.PUT("/stories/:id", storyController.Update)
	protected.DELETE("/stories/:id", storyController.Destroy)
	protected.DELETE("/content-images/:id", storyController.DeleteImage)
	protected.POST("/content-images/batch-delete", storyController.BatchDeleteImages)

	protected.GET("/bookmarks", bookmarkController.List)
	protected.POST("/bookmarks", bookmarkController.Store)
	protected.DELETE("/bookmarks/:id", bookmarkController.Destroy)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found")
	})

	return r
}
