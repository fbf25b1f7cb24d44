package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by the ledger store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// CacheChecker is satisfied by the Redis cache service.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
	GetStats() *redis.PoolStats
}

type HealthHandler struct {
	db    Pinger
	cache CacheChecker
	log   *slog.Logger
}

// NewHealthHandler builds the health endpoint. cache may be nil.
func NewHealthHandler(db Pinger, cache CacheChecker, log *slog.Logger) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HealthHandler{db: db, cache: cache, log: log}
}

// HealthCheck reports 503 only when the database is unreachable; a cache
// outage degrades reads but does not take the service down.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	database := "connected"
	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("database health check failed", "error", err)
		database = "unavailable"
		status = fiber.StatusServiceUnavailable
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}

	body := fiber.Map{"status": overall}
	services := fiber.Map{"database": database, "redis": "disabled"}
	if h.cache != nil {
		services["redis"] = "connected"
		if err := h.cache.HealthCheck(ctx); err != nil {
			h.log.Warn("redis health check failed", "error", err)
			services["redis"] = "unavailable"
		}
		if stats := h.cache.GetStats(); stats != nil {
			body["redis_pool"] = fiber.Map{
				"hits":        stats.Hits,
				"misses":      stats.Misses,
				"timeouts":    stats.Timeouts,
				"total_conns": stats.TotalConns,
				"idle_conns":  stats.IdleConns,
				"stale_conns": stats.StaleConns,
			}
		}
	}
	body["services"] = services

	return c.Status(status).JSON(body)
}
