package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"groupbuy-service/internal/handler"
	mid "groupbuy-service/internal/middleware"
	"groupbuy-service/pkg/config"
	"groupbuy-service/pkg/database"
	"groupbuy-service/pkg/jwtutil"
	"groupbuy-service/pkg/logger"
	"groupbuy-service/pkg/oauth"
	"groupbuy-service/prometheus"
)

func main() {
	// Load configuration (reads .env if present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting groupbuy-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility for the admin API
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Identity issuer client
	verifier := oauth.NewClient(appConfig.OAuth.BaseURL, appConfig.OAuth.ClientID, log)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Routes
	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Storefront surface
	storefront := handler.NewStorefront(database.GetDB(), verifier)
	e.GET("/products", storefront.GetProducts)
	e.POST("/products", storefront.PostProducts)

	// Admin catalog API - Apply auth middleware to validate the admin JWT
	adminAPI := e.Group("/api/admin/products", mid.AuthMiddleware)
	adminAPI.GET("", handler.ListProducts)
	adminAPI.GET("/:id", handler.GetProduct)
	adminAPI.POST("", handler.CreateProduct)
	adminAPI.PUT("/:id", handler.UpdateProduct)
	adminAPI.DELETE("/:id", handler.DeleteProduct)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
