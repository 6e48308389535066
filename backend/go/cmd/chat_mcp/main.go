package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"moihub_chatbot/backend/go/internal/chat_service/app"
	"moihub_chatbot/backend/go/internal/chat_service/mcptools"
	"moihub_chatbot/backend/go/internal/config"
	"moihub_chatbot/backend/go/internal/models"
	"moihub_chatbot/backend/go/pkg/logger"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// STDIO transport (default)
//go run ./backend/go/cmd/chat_mcp
//
// SSE transport on port 8085
//go run ./backend/go/cmd/chat_mcp -transport=sse -port=8085
//
// StreamableHTTP transport on port 9000
//go run ./backend/go/cmd/chat_mcp -transport=httpstream -port=9000

func main() {
	configPath := flag.String("config", "backend/go/internal/config/config.yaml", "Path to the YAML config file")
	transport := flag.String("transport", "stdio", "Transport method: stdio, sse, or httpstream")
	port := flag.String("port", "8085", "Port for HTTP-based transports (sse, httpstream)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	// stdout 属于 STDIO 传输，日志必须写到 stderr
	logrus.SetOutput(os.Stderr)
	log.SetOutput(os.Stderr)
	serviceLogger := logger.New("chat_mcp", "", "")

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(startCtx, cfg, serviceLogger)
	startCancel()
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to initialize knowledge service")
	}
	defer application.Close(context.Background())

	tools := mcptools.New(application.Service, cfg.Knowledge.FallbackMessage, serviceLogger)
	s := mcptools.NewServer("moihub-chat", cfg.App.Version, tools)

	// Start server based on transport selection
	switch *transport {
	case "sse":
		serviceLogger.Info("Starting MCP server with SSE transport on port " + *port)
		sseServer := server.NewSSEServer(s)
		if err := sseServer.Start(":" + *port); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("SSE server error")
		}
	case "httpstream":
		serviceLogger.Info("Starting MCP server with StreamableHTTP transport on port " + *port)
		httpServer := server.NewStreamableHTTPServer(s)
		if err := httpServer.Start(":" + *port); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("HTTP server error")
		}
	case "stdio":
		serviceLogger.Info("Starting MCP server with STDIO transport")
		if err := server.ServeStdio(s); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("STDIO server error")
		}
	default:
		serviceLogger.Error("Unknown transport: " + *transport + ". Use stdio, sse, or httpstream")
	}
}
