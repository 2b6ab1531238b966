package handlers

import (
	"context"
	"time"

	"fintrack/internal/repositories/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler reports on db and, when non-nil, redis.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status := fiber.StatusOK
	services := fiber.Map{"database": "connected"}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		services["database"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	}

	if h.redis == nil {
		services["redis"] = "disabled"
	} else if err := cache.HealthCheck(ctx, h.redis); err != nil {
		services["redis"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	} else {
		services["redis"] = "connected"
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   state,
		"version":  "1.0.0",
		"services": services,
	})
}

// CacheStats exposes the redis connection pool counters.
func (h *HealthHandler) CacheStats(c *fiber.Ctx) error {
	if h.redis == nil {
		return c.JSON(fiber.Map{"pool_stats": nil})
	}
	poolStats := h.redis.PoolStats()

	return c.JSON(fiber.Map{
		"pool_stats": fiber.Map{
			"hits":        poolStats.Hits,
			"misses":      poolStats.Misses,
			"timeouts":    poolStats.Timeouts,
			"total_conns": poolStats.TotalConns,
			"idle_conns":  poolStats.IdleConns,
			"stale_conns": poolStats.StaleConns,
		},
	})
}
