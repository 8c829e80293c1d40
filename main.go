package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"campus-gms/config"
	"campus-gms/database"
	"campus-gms/jobs"
	"campus-gms/middleware"
	"campus-gms/routes"
	"campus-gms/services"
	"campus-gms/utils"
	ws "campus-gms/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	logger := utils.NewLogger(cfg.Log)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("❌ Invalid configuration", zap.Error(err))
	}
	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Initialize(cfg.Database, logger); err != nil {
		logger.Fatal("❌ Failed to initialize database", zap.Error(err))
	}
	db := database.GetDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(cfg.Issues.CatalogFile, logger)
	if err != nil {
		logger.Fatal("❌ Failed to load categories", zap.Error(err))
	}
	categories := services.NewCategoryService(db, cat, logger)
	if err := seedCategories(ctx, categories, logger); err != nil {
		logger.Fatal("❌ Failed to seed categories", zap.Error(err))
	}

	jwt := services.NewJWTService(db, cfg.JWT, logger)
	notifications := services.NewNotificationService(db, logger)
	issues := services.NewIssueService(db, categories, notifications, logger)

	var uploader services.Uploader
	if cfg.Cloudinary.URL != "" {
		cld, err := services.NewCloudinaryUploader(cfg.Cloudinary.URL)
		if err != nil {
			logger.Fatal("❌ Invalid CLOUDINARY_URL", zap.Error(err))
		}
		uploader = cld
	} else {
		logger.Warn("⚠️ CLOUDINARY_URL not set, attachment uploads are disabled")
	}

	hub := ws.NewHub(logger)
	go hub.Run(ctx)
	issues.SetNotifier(ws.NewIssueBroadcaster(hub))

	limiter := middleware.NewRateLimiter(cfg.Server.RequestsPerMinute)
	go limiter.Run(ctx, 5*time.Minute)

	autoClose := jobs.NewAutoCloseJob(issues, jwt, cfg.Issues.AutoCloseAfter, cfg.Issues.AutoCloseInterval, logger)
	autoClose.Start()
	defer autoClose.Stop()

	router := routes.Setup(routes.Deps{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		JWT:           jwt,
		Auth:          services.NewAuthService(db, jwt, logger),
		Categories:    categories,
		Issues:        issues,
		LostFound:     services.NewLostFoundService(db, notifications, logger),
		Notifications: notifications,
		Media:         services.NewMediaService(uploader, cfg.Cloudinary.Folder, logger),
		Hub:           hub,
		RateLimiter:   limiter,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🚀 Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Graceful shutdown failed", zap.Error(err))
	}
}
