package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mediahub/chat-center/config"
	"mediahub/chat-center/handlers"
	"mediahub/chat-center/middleware"
	"mediahub/chat-center/store"
	"mediahub/chat-center/utils"
	"mediahub/chat-center/ws"
)

func main() {
	// Initialize logger
	logger := utils.NewLogger()

	// Load configuration
	cfg := config.LoadConfig(logger)

	// Pick the presence backend
	var presence store.PresenceTracker
	if cfg.RedisURL != "" {
		redisClient, err := store.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisClient.Close()
		presence = store.NewRedisPresence(redisClient, cfg.OnlineTimeout, logger)
		logger.Info("Using Redis presence backend")
	} else {
		presence = store.NewMemoryPresence(cfg.OnlineTimeout)
	}

	// Initialize the chat store and the broadcast hub
	chatStore := store.NewChatStore(cfg.ChatDataPath, cfg.MaxMessages, presence, logger)
	hub := ws.NewHub(logger)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatStore, hub, logger)
	wsHandler := handlers.NewWSHandler(hub, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Chat routes; paths are preserved for compatibility with existing
	// deployments of the chat plugin.
	router.GET("/messages", chatHandler.ListMessages)
	router.POST("/send", chatHandler.SendMessage)
	router.GET("/online", chatHandler.ListOnlineUsers)
	router.POST("/heartbeat", chatHandler.Heartbeat)
	router.POST("/clear", chatHandler.ClearMessages)

	// Live message feed
	router.GET("/ws", wsHandler.Subscribe)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Chat Center", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
