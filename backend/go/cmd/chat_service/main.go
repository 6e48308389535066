package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moihub_chatbot/backend/go/internal/chat_service/api"
	"moihub_chatbot/backend/go/internal/chat_service/app"
	"moihub_chatbot/backend/go/internal/config"
	"moihub_chatbot/backend/go/internal/models"
	chathttp "moihub_chatbot/backend/go/pkg/http"
	"moihub_chatbot/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "backend/go/internal/config/config.yaml", "Path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	serviceLogger := logger.New(cfg.App.Name, "", "")

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(startCtx, cfg, serviceLogger)
	startCancel()
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to initialize chat service")
	}
	serviceLogger.Info("Knowledge store ready (driver: " + cfg.Databases.Driver + ")")

	requestTimeout, _ := config.ParseDuration(cfg.Server.RequestTimeout)
	routerOpts := api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: requestTimeout,
	}
	if cfg.Middleware.CircuitBreaker.Enabled {
		routerOpts.Breaker, err = chathttp.NewCircuitBreaker(cfg.Middleware.CircuitBreaker)
		if err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create circuit breaker")
		}
		serviceLogger.Info("Enabling Circuit Breaker middleware")
	}

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(application.Service, cfg.Knowledge.FallbackMessage, serviceLogger)
	router := api.SetupRouter(handler, serviceLogger, routerOpts)
	srv := chathttp.NewServer(router, chathttp.WithAddress(cfg.Server.Address))

	// Start server
	go func() {
		serviceLogger.Info("Starting HTTP server on " + srv.Addr())
		if err := srv.ListenAndServe(); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("HTTP server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	serviceLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Server forced to shutdown")
	}
	if err := application.Close(shutdownCtx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error releasing resources")
	}

	serviceLogger.Info("Server gracefully stopped")
}
