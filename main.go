package main

import (
	"github.com/ceritaku/server/config"
	"github.com/ceritaku/server/models"
	"github.com/ceritaku/server/routes"
	"github.com/ceritaku/server/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Category{},
		&models.Story{},
		&models.ContentImage{},
		&models.Bookmark{},
	)

	if err := models.EnsureSeedCategories(db); err != nil {
		utils.Sugar.Fatalf("failed to seed categories: %v", err)
	}

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
