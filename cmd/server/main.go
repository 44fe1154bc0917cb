package main

import (
	"buspay/internal/api"             // Custom package for API handlers
	"buspay/internal/config"          // Custom package for configuration
	"buspay/internal/ledger"          // Balance-and-seat ledger core
	"buspay/internal/middleware"      // Custom package for middleware
	"buspay/internal/store/gormstore" // Gorm implementation of the ledger store
	"context"                         // context package is needed for Redis operations
	"log"                             // log package is needed for logging

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup the ledger service over the gorm store
	svc, err := ledger.NewService(gormstore.New(db))
	if err != nil {
		logrus.Fatalf("failed to build ledger service: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/rider", api.RegisterHandler(db))            // Registration endpoint
	r.GET("/rider", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Account routes (protected by JWT)
	accountGroup := r.Group("/account")
	// Protect account routes with JWT middleware and inject Redis client into context
	accountGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	accountGroup.GET("", api.GetAccountHandler(db, redisClient))                       // Account view endpoint
	accountGroup.POST("/topup", api.TopupHandler(svc))                                 // Top-up endpoint
	accountGroup.GET("/transactions", api.TransactionHistoryHandler(svc, redisClient)) // Transaction history endpoint

	// Bus and booking routes (protected by JWT)
	busGroup := r.Group("/buses")
	busGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	busGroup.GET("", api.ListBusesHandler(db))                  // Bus listing endpoint
	busGroup.GET("/:number", api.GetBusHandler(db))             // Single bus endpoint
	busGroup.POST("/:number/book", api.BookSeatsHandler(svc))   // Seat booking endpoint
	busGroup.POST("/:number/confirm", api.ConfirmSeatHandler(svc)) // Boarding confirmation endpoint
	busGroup.POST("/:number/release", api.ReleaseSeatsHandler(svc)) // Seat release endpoint

	// Fare routes (protected by JWT, Redis injected for cache invalidation)
	fareGroup := r.Group("/fare")
	fareGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	fareGroup.POST("/scan", api.ScanFareHandler(svc)) // Fare settlement endpoint
	fareGroup.GET("/qr", api.QRPayloadHandler())      // Scan payload endpoint

	// Feedback route (protected by JWT)
	r.POST("/feedback", middleware.JWTAuthMiddleware(cfg.JWTSecret), api.SubmitFeedbackHandler(svc))

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/riders", api.ListRidersHandler(db, redisClient))             // List riders endpoint
	adminGroup.GET("/transactions", api.ListTransactionsHandler(db, redisClient)) // List transactions endpoint
	adminGroup.POST("/buses", api.CreateBusHandler(db))                           // Create bus endpoint
	adminGroup.PUT("/buses/:number", api.UpdateBusHandler(db))                    // Update bus endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
