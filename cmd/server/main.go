package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"leadflow.backend/internal/config"
	"leadflow.backend/internal/infrastructure/facebook"
	"leadflow.backend/internal/infrastructure/repositories"
	"leadflow.backend/internal/interfaces/http/handlers"
	"leadflow.backend/internal/interfaces/http/middleware"
	"leadflow.backend/internal/usecases"
	"leadflow.backend/pkg/jwt"
	"leadflow.backend/pkg/logger"
	"leadflow.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("connected to PostgreSQL via GORM")
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	postRepo := repositories.NewPostRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Ad platform client
	fbClient := facebook.NewClient(facebook.Config{
		AppSecret:          cfg.Facebook.AppSecret,
		VerifyToken:        cfg.Facebook.VerifyToken,
		PageToken:          cfg.Facebook.PageToken,
		SystemUserToken:    cfg.Facebook.SystemUserToken,
		ConversionsToken:   cfg.Facebook.ConversionsToken,
		PixelID:            cfg.Facebook.PixelID,
		TestEventCode:      cfg.Facebook.TestEventCode,
		DefaultAdAccountID: cfg.Facebook.DefaultAdAccountID,
	})

	// Initialize usecases
	activityUsecase := usecases.NewActivityUsecase(activityRepo, userRepo)
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService, sessionStore, cfg.Admin.AdminEmails, cfg.Admin.SuperAdminEmails)
	leadUsecase := usecases.NewLeadUsecase(leadRepo, userRepo, activityUsecase, uow, fbClient)
	webhookUsecase := usecases.NewWebhookUsecase(leadRepo, activityUsecase, fbClient)
	feedUsecase := usecases.NewFeedUsecase(postRepo, activityUsecase)
	dashboardUsecase := usecases.NewDashboardUsecase(leadRepo, userRepo)
	adsUsecase := usecases.NewAdsUsecase(fbClient, activityUsecase)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	profileHandler := handlers.NewProfileHandler(authUsecase)
	leadHandler := handlers.NewLeadHandler(leadUsecase)
	activityHandler := handlers.NewActivityHandler(activityUsecase)
	webhookHandler := handlers.NewWebhookHandler(webhookUsecase, fbClient, cfg.Facebook.AllowUnsignedWebhooks)
	feedHandler := handlers.NewFeedHandler(feedUsecase)
	dashboardHandler := handlers.NewDashboardHandler(dashboardUsecase)
	adsHandler := handlers.NewAdsHandler(adsUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService, sessionStore)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:      authHandler,
		profileHandler:   profileHandler,
		leadHandler:      leadHandler,
		activityHandler:  activityHandler,
		webhookHandler:   webhookHandler,
		feedHandler:      feedHandler,
		dashboardHandler: dashboardHandler,
		adsHandler:       adsHandler,
		authMiddleware:   authMiddleware,
	})

	if cfg.Facebook.AllowUnsignedWebhooks {
		logger.Warn(context.Background(), "webhook signature verification is DISABLED")
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down server...")
		sqlDB.Close()
		os.Exit(0)
	}()

	log.Printf("LeadFlow backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
