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

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/adapters/artifacts"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/adapters/cache"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/adapters/database"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/adapters/events"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/adapters/search"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/api/handlers"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/api/routes"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/application/services"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/providers"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/repositories"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/postgres"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/redis"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/typesense"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/observability"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/prediction"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client. The service degrades gracefully without
	// it: no cache, no event bus, no SSE.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client. Without it, matching falls back to
	// catalog scans in Postgres.
	var typesenseClient *typesense.Client
	if cfg.Typesense.URL != "" {
		typesenseClient, err = typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Printf("Warning: Failed to initialize Typesense client: %v", err)
			typesenseClient = nil
		} else {
			log.Println("Typesense client initialized successfully")
		}
	} else {
		log.Println("Typesense not configured, matching uses catalog scans")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Lab repository, wrapped with caching when Redis is available
	baseLabAdapter := database.NewLabAdapter(pgClient)
	var labRepo repositories.LabRepository
	if cacheProvider != nil {
		labRepo = database.NewCachedLabAdapter(baseLabAdapter, cacheProvider)
		log.Println("Lab adapter wrapped with caching layer")
	} else {
		labRepo = baseLabAdapter
		log.Println("Lab adapter running without cache (Redis unavailable)")
	}

	var searchRepo repositories.LabSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(ctx); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	// Model artifact store
	var artifactProvider providers.ArtifactProvider
	switch cfg.Models.Provider {
	case "file":
		artifactProvider = artifacts.NewFileAdapter(cfg.Models.ArtifactDir)
		log.Printf("Model artifacts served from %s", cfg.Models.ArtifactDir)
	default:
		artifactProvider = artifacts.NewDatabaseAdapter(pgClient)
		log.Println("Model artifacts served from PostgreSQL")
	}
	registry := prediction.NewRegistry(artifactProvider, cfg.Models.FetchAttempts)

	// Initialize services
	matchingService := services.NewMatchingService(labRepo, searchRepo)
	pricingService := services.NewPricingService(matchingService, registry)
	timelineService := services.NewTimelineService(matchingService, pricingService, registry)
	admissionService := services.NewAdmissionService(labRepo, eventBus, metrics)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(pricingService, timelineService)
	queueHandler := handlers.NewQueueHandler(admissionService)
	priceHandler := handlers.NewPriceHandler(labRepo)

	var streamHandler *handlers.StreamHandler
	if eventBus != nil {
		streamHandler = handlers.NewStreamHandler(eventBus)
	}

	// Set up router
	router := routes.NewRouter(
		searchHandler,
		queueHandler,
		priceHandler,
		streamHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server. WriteTimeout stays zero because SSE
	// connections are long-lived.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
