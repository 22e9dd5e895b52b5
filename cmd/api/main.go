package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kedai/backoffice-service/config"
	"github.com/kedai/backoffice-service/internal/auth"
	"github.com/kedai/backoffice-service/internal/model"
	"github.com/kedai/backoffice-service/pkg/blobstore"
	"github.com/kedai/backoffice-service/pkg/broker"
	"github.com/kedai/backoffice-service/pkg/cache"
	"github.com/kedai/backoffice-service/pkg/database/mongodb"
	"github.com/kedai/backoffice-service/pkg/logger"
	"github.com/kedai/backoffice-service/pkg/search"

	cartRepoPkg "github.com/kedai/backoffice-service/internal/cart/repository"

	menuPkg "github.com/kedai/backoffice-service/internal/menu"
	menuH "github.com/kedai/backoffice-service/internal/menu/handler"
	menuRepoPkg "github.com/kedai/backoffice-service/internal/menu/repository"
	menuUCPkg "github.com/kedai/backoffice-service/internal/menu/usecase"

	invH "github.com/kedai/backoffice-service/internal/inventory/handler"
	invListenerPkg "github.com/kedai/backoffice-service/internal/inventory/listener"
	invRepoPkg "github.com/kedai/backoffice-service/internal/inventory/repository"
	invUCPkg "github.com/kedai/backoffice-service/internal/inventory/usecase"

	userH "github.com/kedai/backoffice-service/internal/user/handler"
	userRepoPkg "github.com/kedai/backoffice-service/internal/user/repository"
	userUCPkg "github.com/kedai/backoffice-service/internal/user/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     false,
		DisableStacktrace: false,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
		logConfig.DisableCaller = cfg.Logger.DisableCaller
		logConfig.DisableStacktrace = cfg.Logger.DisableStacktrace
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to the document store
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := mongodb.Connect(connectCtx, &mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	connectCancel()
	if err != nil {
		appLogger.Fatal("Could not connect to MongoDB", zap.Error(err))
	}
	appLogger.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	// 4. Initialize Repositories
	menuRepo := menuRepoPkg.NewMongoRepository(db)
	cartRepo := cartRepoPkg.NewMongoRepository(db)
	invRepo := invRepoPkg.NewMongoRepository(db)
	userRepo := userRepoPkg.NewMongoRepository(db)

	if err := cartRepo.CreateIndexes(context.Background()); err != nil {
		appLogger.Warn("Could not create cart indexes", zap.Error(err))
	}

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis (list caching disabled)", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 5.8 Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (search falls back to the store)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 5.9 Initialize blob storage for menu images
	var imageStore menuPkg.ImageStore
	uploader, err := blobstore.NewUploader(context.Background(), cfg.Storage.Bucket)
	if err != nil {
		appLogger.Warn("Could not configure blob storage (image upload disabled)", zap.Error(err))
	} else {
		imageStore = uploader
	}

	// 6. Initialize UseCases
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey)
	menuUC := menuUCPkg.NewMenuUseCase(menuRepo, cartRepo, redisClient, esClient, imageStore, cfg.Storage.ImagePrefix, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo, jwtManager, appLogger)

	// 6.5 Start the sales listener
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	salesListener := invListenerPkg.NewSalesListener(kafkaConsumer, invUC, appLogger)
	go salesListener.Start(ctx)

	// 7. Initialize Handlers
	menuHandler := menuH.NewMenuHandler(menuUC, appLogger)
	invHandler := invH.NewInventoryHandler(invUC, appLogger)
	userHandler := userH.NewUserHandler(userUC, appLogger)

	// 8. HTTP server
	if cfg.Server.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server.POST("/auth/login", userHandler.Login)
	server.POST("/auth/logout", userHandler.Logout)

	requireAdmin := []gin.HandlerFunc{
		auth.RequireAuth(jwtManager),
		auth.RequireRole(model.RoleAdmin, model.RoleSuperAdmin),
	}

	menuGroup := server.Group("/menu", requireAdmin...)
	{
		menuGroup.GET("", menuHandler.List)
		menuGroup.POST("", menuHandler.Create)
		menuGroup.GET("/stream", menuHandler.Stream)
		menuGroup.GET("/top-selling", menuHandler.TopSelling)
		menuGroup.GET("/:id", menuHandler.Get)
		menuGroup.PUT("/:id", menuHandler.Update)
		menuGroup.DELETE("/:id", menuHandler.Delete)
		menuGroup.POST("/:id/image", menuHandler.UploadImage)
	}

	invGroup := server.Group("/inventory", requireAdmin...)
	{
		invGroup.GET("/low-stock", invHandler.LowStock)
		invGroup.GET("/movements", invHandler.Movements)
		invGroup.POST("/:id/increment", invHandler.Increment)
		invGroup.POST("/:id/decrement", invHandler.Decrement)
		invGroup.POST("/:id/adjust", invHandler.BulkAdjust)
	}

	userGroup := server.Group("/users", requireAdmin...)
	{
		userGroup.GET("", userHandler.List)
		userGroup.GET("/stream", userHandler.Stream)
		userGroup.PATCH("/:id/role", auth.RequireRole(model.RoleSuperAdmin), userHandler.ChangeRole)
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: server,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
