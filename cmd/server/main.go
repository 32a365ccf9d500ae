package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/demointeriors/tour-service/internal/api"
	"github.com/demointeriors/tour-service/internal/db"
	"github.com/demointeriors/tour-service/internal/events"
	"github.com/demointeriors/tour-service/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	log.SetOutput(os.Stdout)

	log.Printf("Tour Service starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	// Initialize database connection (non-fatal; allow process to start for /live)
	database, err := db.NewDatabase()
	if err != nil {
		log.Printf("[WARN] Database initialization failed at startup: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	// Start the embedded event bus and the analytics worker
	bus, publisher, workerCancel := startEvents(database)
	if bus != nil {
		defer bus.Shutdown(context.Background())
	}
	if workerCancel != nil {
		defer workerCancel()
	}

	handler := api.NewHandler(database, publisher)
	router := setupRouter(handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

// startEvents boots the embedded NATS server and the analytics worker.
// Event processing is optional: a failed boot logs a warning and the
// service runs without analytics.
func startEvents(database *db.Database) (*events.EmbeddedNATS, api.EventPublisher, context.CancelFunc) {
	if os.Getenv("DISABLE_EVENTS") == "true" || database == nil {
		return nil, nil, nil
	}

	cfg := events.DefaultConfig()
	if p := os.Getenv("NATS_PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			cfg.Port = port
		}
	}
	if dir := os.Getenv("NATS_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	bus := events.New(cfg)
	if err := bus.Start(); err != nil {
		log.Printf("[WARN] Event bus failed to start, analytics disabled: %v", err)
		return nil, nil, nil
	}

	worker := events.NewAnalyticsWorker(bus.JetStream(), database)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := worker.Start(ctx); err != nil && ctx.Err() == nil {
			logging.Error("analytics worker exited", err, nil)
		}
	}()

	return bus, events.NewPublisher(bus), func() {
		cancel()
		_ = worker.Stop()
	}
}

func setupRouter(handler *api.Handler) *gin.Engine {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Serve uploaded panoramas for local development
	router.Static("/uploads", "./uploads")

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	{
		// Parse JWT if present to expose role info for read endpoints
		v1.Use(api.OptionalAuthMiddleware())

		// Public viewer endpoints
		v1.GET("/public/projects/:slug", handler.GetPublicProject)
		v1.GET("/projects/:id/hierarchy", handler.GetProjectHierarchy)
		v1.GET("/projects/:id/initial-selection", handler.GetInitialSelection)
		v1.GET("/rooms/:id/views", handler.GetRoomViews)
		v1.GET("/views/:id/pins", handler.GetViewPins)
		v1.GET("/assets/:id", handler.GetAsset)
		v1.POST("/projects/:id/snapshots", handler.RecordSnapshot)

		// Authenticated dashboard endpoints
		auth := v1.Group("")
		auth.Use(api.AuthMiddleware())
		{
			auth.GET("/orgs/:slug", handler.GetOrganization)
			auth.GET("/orgs/:slug/members", handler.GetOrganizationMembers)
			auth.GET("/orgs/:slug/seat-usage", handler.GetSeatUsage)
			auth.GET("/projects", handler.GetProjects)
			auth.GET("/projects/:id", handler.GetProject)
			auth.GET("/projects/:id/analytics", handler.GetProjectAnalytics)
			auth.GET("/projects/:id/sharing", handler.GetProjectSharing)
		}

		// Content writes require editor access
		editor := v1.Group("")
		editor.Use(api.AuthMiddleware(), api.EditorMiddleware())
		{
			editor.PUT("/projects/:id/sharing", handler.UpdateProjectSharing)
			editor.POST("/rooms/:id/views", handler.UploadRoomView)
		}
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "tour-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

// corsMiddleware adds CORS headers to allow cross-origin requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
