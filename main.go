package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/PBA-Dev/allstars-minimal/api"
	"github.com/PBA-Dev/allstars-minimal/config"
	"github.com/PBA-Dev/allstars-minimal/database"
	"github.com/PBA-Dev/allstars-minimal/middleware"
	"github.com/PBA-Dev/allstars-minimal/repository"
	"github.com/PBA-Dev/allstars-minimal/services"
)

func main() {
	config.LoadConfig()

	articleRepo, err := newArticleRepository()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize article storage: %v", err)
	}
	log.Printf("INFO: [Main] Article repository initialized (driver=%s).", config.AppConfig.Storage.Driver)

	articleService := services.NewArticleService(articleRepo, config.AppConfig.RecentLimit)
	uploadService, err := services.NewUploadService(
		config.AppConfig.Uploads.Dir,
		config.AppConfig.Uploads.BasePath,
		config.AppConfig.Uploads.MaxImageMB*1024*1024,
		config.AppConfig.Uploads.MaxVideoMB*1024*1024,
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize upload storage: %v", err)
	}
	log.Println("INFO: [Main] Services initialized.")

	if config.AppConfig.SeedData {
		services.SeedDemoArticles(articleService)
	}

	// The multipart envelope adds some overhead on top of the largest
	// allowed file, so the request cap leaves 1MB of headroom.
	maxUploadBytes := config.AppConfig.Uploads.MaxVideoMB*1024*1024 + 1024*1024
	apiHandler := api.NewAPIHandler(articleService, uploadService, config.AppConfig.Storage.Driver, maxUploadBytes)
	log.Println("INFO: [Main] API Handler initialized.")

	r := gin.Default()
	r.SetTrustedProxies(nil)

	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	log.Println("INFO: [Main] Middlewares registered.")

	registerRoutes(r, apiHandler)
	log.Println("INFO: [Main] Routes registered.")

	serverPort := ":" + config.AppConfig.Server.Port
	if config.AppConfig.Server.Port == "" {
		log.Println("WARN: [Main] Server port not configured, using default :8080.")
		serverPort = ":8080"
	}
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

// newArticleRepository picks the storage backend from configuration.
func newArticleRepository() (repository.ArticleRepository, error) {
	switch config.AppConfig.Storage.Driver {
	case "sqlite":
		db, err := database.Init(config.AppConfig.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return repository.NewGormArticleRepository(db)
	case "memory":
		return repository.NewMemoryArticleRepository(), nil
	default:
		return repository.NewFileArticleRepository(config.AppConfig.Storage.Dir)
	}
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/articles", handler.ListArticlesHandler)
		apiGroup.POST("/articles", handler.CreateArticleHandler)
		apiGroup.GET("/articles/:id", handler.GetArticleHandler)
		apiGroup.PUT("/articles/:id", handler.UpdateArticleHandler)
		apiGroup.DELETE("/articles/:id", handler.DeleteArticleHandler)
		apiGroup.GET("/articles/:id/history", handler.ArticleHistoryHandler)

		apiGroup.GET("/random", handler.RandomArticleHandler)
		apiGroup.GET("/recent", handler.RecentArticlesHandler)
		apiGroup.GET("/search", handler.SearchArticlesHandler)

		apiGroup.POST("/upload", handler.UploadHandler)
	}

	// Uploaded media is served back under its public prefix.
	r.Static(config.AppConfig.Uploads.BasePath, config.AppConfig.Uploads.Dir)

	r.GET("/health", handler.HealthHandler)
}
