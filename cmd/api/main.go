package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"webskeleton/internal/app"
	"webskeleton/internal/config"
	"webskeleton/internal/database"
	handlers "webskeleton/internal/http/handler"
	"webskeleton/internal/http/middleware"
	"webskeleton/internal/otel"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.Local
	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Open the process-wide connection pool (pgx via database/sql, bun on top)
	pool, err := database.NewPool(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	reg := prometheus.NewRegistry()
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	fiberApp.Use(otelfiber.Middleware())
	fiberApp.Use(middleware.RequestID())
	fiberApp.Use(middleware.Logger())
	fiberApp.Use(promMW.Handler())

	handlers.RegisterRoutes(fiberApp, reg)

	life := app.New(app.Options{
		Server:          fiberApp,
		Pool:            pool,
		Addr:            ":" + cfg.Port,
		ShutdownTimeout: time.Duration(cfg.ShutdownTimeoutSec) * time.Second,
		Loc:             loc,
		DBHost:          cfg.Database.Host,
	})

	// Boot phase: probe the database and ensure the schema. A failure here
	// must happen before the listener ever binds.
	if err := life.Startup(ctx); err != nil {
		_ = pool.Close()
		log.Fatalf("startup failed: %v", err)
	}

	if err := life.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
