package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell/internal/auth"
	"github.com/inkwell-labs/inkwell/internal/config"
	"github.com/inkwell-labs/inkwell/internal/database"
	"github.com/inkwell-labs/inkwell/internal/health"
	"github.com/inkwell-labs/inkwell/internal/middleware"
	"github.com/inkwell-labs/inkwell/internal/post"
	"github.com/inkwell-labs/inkwell/internal/ratelimit"
	"github.com/inkwell-labs/inkwell/internal/token"
	"github.com/inkwell-labs/inkwell/internal/user"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting Inkwell API", zap.String("env", cfg.Env))

	// Signing key material is a startup concern: fail fast.
	privateKey, err := token.LoadRSAPrivateKey(cfg.JWT.PrivateKeyPath)
	if err != nil {
		logger.Fatal("Failed to load signing key", zap.Error(err))
	}
	publicKey, err := token.LoadRSAPublicKey(cfg.JWT.PublicKeyPath)
	if err != nil {
		logger.Fatal("Failed to load verification key", zap.Error(err))
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Initialize services
	userRepo := user.NewRepository(db.DB)
	postRepo := post.NewRepository(db.DB)

	mapper := token.NewMapper(cfg.JWT.Audience, cfg.JWT.TTL, nil)
	signer := token.NewSigner(privateKey)
	parser := token.NewJWTParser(publicKey)
	refreshStore := token.NewPostgresRefreshStore(db.DB)
	revocations := token.NewRedisRevocationCache(redisClient.Client)
	refreshManager := token.NewRefreshManager(refreshStore, revocations, cfg.JWT.RefreshTTL, nil)

	rateLimiter := ratelimit.NewLimiter(
		redisClient.Client,
		cfg.RateLimit.Window,
		cfg.RateLimit.MaxAttempts,
		cfg.RateLimit.LockoutDuration,
	)

	authService := auth.NewService(userRepo, mapper, signer, parser, refreshManager, rateLimiter, logger, nil)
	postService := post.NewService(postRepo)

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	postHandler := post.NewHandler(postService)
	healthHandler := health.NewHandler(map[string]health.Probe{
		"postgres": db,
		"redis":    redisClient,
	})

	// Set up Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	allowedOrigins := middleware.ParseAllowedOrigins(cfg.CORS.AllowedOrigins)
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	// Public routes
	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)

		// Protected routes (require authentication)
		authGroup.Use(middleware.Auth(authService))
		{
			authGroup.GET("/me", authHandler.Me)
		}
	}

	// Post routes
	postGroup := router.Group("/posts")
	{
		postGroup.GET("", postHandler.List)
		postGroup.GET("/:id", postHandler.Get)

		postGroup.Use(middleware.Auth(authService))
		{
			postGroup.POST("", postHandler.Create)
			postGroup.PUT("/:id", postHandler.Update)
			postGroup.DELETE("/:id", postHandler.Delete)
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
