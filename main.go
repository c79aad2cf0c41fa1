// File: /main.go
package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"serenity-api/auth"
	"serenity-api/config"
	"serenity-api/database"
	"serenity-api/jobs"
	"serenity-api/localdata"
	"serenity-api/middleware"
	"serenity-api/routes"
	"serenity-api/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Redis backs live sessions
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to redis:", err)
	}

	docStore := database.NewStore(db)
	provider := auth.NewRedisProvider(docStore, rdb, cfg.JWTSecret)

	profileService := services.NewProfileService(docStore)
	friendService := services.NewFriendService(docStore, profileService)
	emailService := services.NewEmailService(cfg)
	defer emailService.Stop()

	sessionManager := services.NewSessionManager(provider, profileService, localdata.NewMemory())

	// Background inbox refresh, cancelled on shutdown
	refreshJob := jobs.NewRequestRefreshJob(friendService, sessionManager, cfg.RefreshInterval)
	refreshJob.Start(context.Background())
	defer refreshJob.Stop()

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(routes.SetupCORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	routes.SetupRoutes(router, routes.Deps{
		Config:       cfg,
		Provider:     provider,
		Registrar:    provider,
		Validator:    provider,
		Profiles:     profileService,
		Friends:      friendService,
		EmailService: emailService,
	})

	log.Printf("Starting Serenity API server on port %s", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
