// Command main is the entry point for the RecipeHub backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipehub/internal/cache"
	"recipehub/internal/config"
	"recipehub/internal/database"
	"recipehub/internal/events"
	"recipehub/internal/middleware"
	"recipehub/internal/observability"
	"recipehub/internal/server"
	"recipehub/internal/storage"
)

// @title RecipeHub API
// @version 1.0
// @description Recipe sharing API with ratings, tag filtering, a following feed and popularity discovery
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@recipehub.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "recipehub-api",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: 1,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	srv, err := server.NewServer(cfg, server.Deps{
		DB:        db,
		Redis:     cache.InitRedis(cfg.RedisURL),
		Store:     objectStore(cfg),
		Publisher: publisher(cfg),
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}

// objectStore talks to MinIO when credentials are configured and keeps
// images in memory otherwise.
func objectStore(cfg *config.Config) storage.ObjectStore {
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		middleware.Logger.Warn("S3 credentials not set, storing images in memory")
		return storage.NewMemoryStore()
	}

	minioStore, err := storage.NewMinioStore(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
	if err != nil {
		log.Fatalf("Failed to create object storage client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.S3Timeout())
	defer cancel()
	if err := minioStore.EnsureBucket(ctx); err != nil {
		// Uploads fail through the breaker until storage comes back.
		middleware.Logger.Error("object storage bucket check failed", "bucket", cfg.S3Bucket, "error", err)
	}

	return storage.NewBreakerStore(minioStore, storage.DefaultBreakerConfig(cfg.S3Timeout()))
}

func publisher(cfg *config.Config) events.Publisher {
	if cfg.NATSURL == "" {
		return events.NopPublisher{}
	}
	p, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		middleware.Logger.Warn("NATS unavailable, domain events disabled", "url", cfg.NATSURL, "error", err)
		return events.NopPublisher{}
	}
	return p
}
