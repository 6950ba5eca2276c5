package main

import (
	"net/http"
	"time"

	"localpulse/config"
	"localpulse/handlers"
	"localpulse/middleware"
	"localpulse/models"
	"localpulse/notifier"
	"localpulse/repositories"
	"localpulse/services"
	"localpulse/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		// Rate limiting degrades to pass-through without redis.
		log.WithError(err).Warn("redis unavailable, rate limiting disabled")
		rdb = nil
	}

	var store storage.Storage
	switch cfg.StorageBackend {
	case "s3":
		store, err = storage.NewS3Storage(cfg.S3Bucket, cfg.S3Region)
	default:
		store, err = storage.NewLocalStorage(cfg.StorageRoot, cfg.StorageBaseURL)
	}
	if err != nil {
		log.WithError(err).Fatal("storage init failed")
	}

	var notify notifier.Notifier = notifier.Noop{}
	if cfg.SMTPHost != "" {
		notify = notifier.NewSMTPNotifier(notifier.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log)
	}

	userRepo := repositories.NewUserRepository(db)
	postRepo := repositories.NewPostRepository(db)
	locationRepo := repositories.NewLocationRepository(db)
	videoRepo := repositories.NewVideoRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	logRepo := repositories.NewModerationLogRepository(db)
	viewRepo := repositories.NewPostViewRepository(db)
	featuredRepo := repositories.NewFeaturedRepository(db)

	authService := services.NewAuthService(userRepo)
	tagService := services.NewTagService(tagRepo)
	mediaService := services.NewMediaService(store, log, cfg.MaxImageSize, cfg.MaxVideoSize)
	postService := services.NewPostService(db, postRepo, locationRepo, videoRepo, tagRepo, logRepo, userRepo, viewRepo, featuredRepo, tagService, mediaService, notify, log)
	moderationService := services.NewModerationService(db, postRepo, logRepo, userRepo, notify, log)

	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postService)
	moderationHandler := handlers.NewModerationHandler(moderationService)
	tagHandler := handlers.NewTagHandler(tagService)

	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	if cfg.StorageBackend != "s3" {
		router.Static(cfg.StorageBaseURL, cfg.StorageRoot)
	}

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, log, "auth", 10, time.Minute))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		public := v1.Group("/public")
		public.Use(middleware.OptionalAuth())
		{
			public.GET("/posts", postHandler.GetPublicPosts)
			public.GET("/posts/:id", postHandler.GetPost)
			public.GET("/posts/nearby", postHandler.GetNearby)
			public.GET("/posts/breaking", postHandler.GetBreaking)
			public.GET("/posts/recent", postHandler.GetRecent)
			public.GET("/posts/featured", postHandler.GetFeatured)
			public.GET("/posts/:id/related", postHandler.GetRelated)
			public.GET("/categories", postHandler.GetCategoryStats)
			public.GET("/tags/popular", tagHandler.GetPopularTags)
		}

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", authHandler.Me)

			posts := protected.Group("/posts")
			{
				posts.POST("", middleware.RateLimit(rdb, log, "submit", 20, time.Hour), postHandler.SubmitPost)
				posts.GET("", postHandler.GetPosts)
				posts.GET("/:id", postHandler.GetPost)
				posts.PUT("/:id", postHandler.UpdatePost)
				posts.DELETE("/:id", postHandler.DeletePost)
				posts.PUT("/:id/status", moderationHandler.TransitionPost)
			}

			moderation := protected.Group("/moderation")
			moderation.Use(middleware.RequireRole(models.RoleModerator, models.RoleAdmin))
			{
				moderation.GET("/posts/:id/history", moderationHandler.GetHistory)
				moderation.GET("/logs", moderationHandler.GetLogs)
				moderation.POST("/posts/:id/feature", postHandler.FeaturePost)
				moderation.DELETE("/posts/:id/feature", postHandler.UnfeaturePost)
			}
		}
	}

	log.WithField("port", cfg.Port).Info("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
