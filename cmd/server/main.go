package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/genopilot-report-server/internal/api"
	"github.com/genopilot-report-server/internal/config"
	"github.com/genopilot-report-server/internal/logging"
	"github.com/genopilot-report-server/internal/mapping"
	"github.com/genopilot-report-server/internal/render"
	"github.com/genopilot-report-server/internal/reportstore"
	"github.com/genopilot-report-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.NewLogger(cfg.Logging)

	// Load the static mapping tables
	tables, err := mapping.Load(cfg.Data.Dir)
	if err != nil {
		log.Fatalf("Failed to load mapping tables: %v", err)
	}

	// Open the report audit store
	var records reportstore.Store
	switch strings.ToLower(cfg.Storage.Driver) {
	case "postgres":
		records, err = reportstore.NewPostgresStoreFromURL(cfg.Storage.PostgresURL)
	default:
		records, err = reportstore.NewSQLiteStore(cfg.Storage.SQLitePath)
	}
	if err != nil {
		log.Fatalf("Failed to open report store: %v", err)
	}
	defer records.Close()

	// Build services
	resolver, err := service.NewCachedResolver(
		logger, service.NewResolver(logger, tables), cfg.Cache.ResolverSize)
	if err != nil {
		log.Fatalf("Failed to build resolver: %v", err)
	}
	renderer := render.NewRenderer(logger, cfg.Data.TemplatePath)
	reports := service.NewReportService(logger, resolver, renderer, records)

	log.Printf("Starting GenoPilot report server on %s:%d", cfg.Server.Host, cfg.Server.Port)

	// Create server
	server := api.NewServer(cfg, logger, tables, resolver, reports, records)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Println("Server stopped")
}
