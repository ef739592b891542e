package main

import (
	"os"
	"time"

	"expenseflow/internal/database"
	"expenseflow/internal/handler"
	"expenseflow/internal/middleware"
	"expenseflow/internal/repository"
	"expenseflow/internal/service"
	"expenseflow/internal/storage"
	"expenseflow/internal/websocket"
	"expenseflow/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Expense Request API
// @version         1.0
// @description     Expense-request submission and approval workflow API.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		// fine in containers where env comes from the orchestrator
	}

	log := logger.New()
	defer log.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dbHost := envOr("DB_HOST", "localhost")
		dbPort := envOr("DB_PORT", "5432")
		dbUser := envOr("DB_USER", "postgres")
		dbPassword := envOr("DB_PASSWORD", "postgres")
		dbName := envOr("DB_NAME", "expenseflow")
		dbSslMode := envOr("DB_SSLMODE", "disable")
		dsn = "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode
	}

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	log.Info("connected to database")

	// Set up WebSocket hub for lifecycle notifications
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Attachment store (disk-backed blob relay)
	uploadDir := envOr("UPLOAD_DIR", "uploads")
	publicURL := envOr("UPLOAD_PUBLIC_URL", "/files")
	store := storage.NewDiskStore(uploadDir, publicURL)

	// Repositories
	txManager := repository.NewTransactionManager(db)
	requestRepo := repository.NewRequestRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	userRepo := repository.NewUserRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)

	// Services
	requestService := service.NewRequestService(requestRepo, approvalRepo, catalogRepo, txManager, store, wsHub, log)
	approvalService := service.NewApprovalService(requestRepo, approvalRepo, txManager, wsHub)
	catalogService := service.NewCatalogService(catalogRepo)
	userService := service.NewUserService(userRepo, catalogRepo)
	statisticsService := service.NewStatisticsService(statisticsRepo)

	// Handlers
	requestHandler := handler.NewRequestHandler(requestService, approvalService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	userHandler := handler.NewUserHandler(userService)
	dashboardHandler := handler.NewDashboardHandler(statisticsService)

	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// 500 requests / 15 min per IP across the whole API
	router.Use(middleware.RateLimit(500, 15*time.Minute))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Relayed attachments are served back from the upload dir
	router.Static(publicURL, uploadDir)

	// Public routes
	userHandler.RegisterPublicRoutes(router.Group(""))

	// Everything else requires a bearer token
	authed := router.Group("", middleware.RequireAuth())
	requestHandler.RegisterRoutes(authed)
	catalogHandler.RegisterRoutes(authed)
	userHandler.RegisterRoutes(authed)
	dashboardHandler.RegisterRoutes(authed)

	port := envOr("PORT", "8080")
	log.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func allowedOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return []string{origins}
	}
	return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
}
