// Package main is the entry point for the ledger API.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/metrics"
	"fintrack/internal/repositories"
	"fintrack/internal/repositories/cache"
	"fintrack/internal/routes"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/ledger"
	"fintrack/internal/services/snapshot"
	"fintrack/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// main performs the following setup:
// - Loads configuration
// - Initializes database and optional Redis connections
// - Wires the currency, snapshot, ledger and wallet services
// - Configures routes and starts the HTTP server
func main() {
	// Load environment variables
	config.LoadEnv()

	db, err := repositories.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✅ Successfully connected to database with connection pooling")

	// Add a periodic check of connection pool stats
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			stats := sqlDB.Stats()
			log.Printf("DB Stats: Open=%d, Idle=%d, InUse=%d, WaitCount=%d, WaitDuration=%s",
				stats.OpenConnections, stats.Idle, stats.InUse, stats.WaitCount, stats.WaitDuration)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewPrometheusCollector(reg)

	var (
		redisClient *redis.Client
		rateCache   currency.RateCache
	)
	switch config.GetEnv("CURRENCY_CACHE", "memory") {
	case "redis":
		redisClient = cache.NewRedisClient(cache.LoadRedisConfig())
		if err := cache.HealthCheck(context.Background(), redisClient); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Println("✅ Redis connected, sharing the currency rate cache")
		rateCache = currency.NewRedisRateCache(cache.NewCacheService(redisClient, 0))
	default:
		rateCache = currency.NewMemoryRateCache()
	}

	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("⚠️ Failed to close database connection: %v", err)
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	source := currency.NewHTTPRateSource(
		config.GetEnv("CURRENCY_API_URL", currency.DefaultRateSourceURL),
		config.GetDurationEnv("CURRENCY_HTTP_TIMEOUT", currency.DefaultHTTPTimeout),
	)
	currencyService := currency.NewService(source, rateCache, currency.Config{
		CacheTTL: config.GetDurationEnv("CURRENCY_CACHE_TTL", currency.DefaultCacheTTL),
	}, collector)

	repos := repositories.NewRepositories(db)
	ledgerService := ledger.NewService(repos, currencyService, ledger.Config{
		MaxQueuedMutations: config.GetIntEnv("LEDGER_MAX_QUEUED_MUTATIONS", ledger.DefaultMaxQueuedMutations),
	}, collector)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName: "fintrack",
	})

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use("/api/transactions", limiter.New(limiter.Config{
		Max:        config.GetIntEnv("RATE_LIMIT_PER_MINUTE", 120),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	// Routes
	routes.SetupRoutes(app, routes.Dependencies{
		DB:        db,
		Redis:     redisClient,
		Ledger:    ledgerService,
		Wallets:   wallet.NewService(repos, currencyService, collector),
		Snapshots: snapshot.NewService(repos),
		Currency:  currencyService,
		JWTSecret: config.GetEnv("JWT_SECRET", "fintrack"),
		Gatherer:  reg,
	})

	go func() {
		if err := app.Listen(":" + config.GetEnv("PORT", "3000")); err != nil {
			log.Printf("⚠️ Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("⚠️ Graceful shutdown failed: %v", err)
	}
}
