package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dispatch/internal/persistence"
)

// HealthHandler reports process liveness and dependency readiness.
type HealthHandler struct {
	postgres *persistence.Postgres
	redis    *persistence.Redis
	logger   *zap.Logger
	appName  string
}

// NewHealthHandler constructs handler.
func NewHealthHandler(postgres *persistence.Postgres, redisConn *persistence.Redis, logger *zap.Logger, appName string) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redisConn, logger: logger, appName: appName}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": h.appName})
}

// Ready GET /health/ready. Unconfigured dependencies report as disabled
// and do not fail readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if h.postgres == nil || h.postgres.Pool == nil {
		checks["postgres"] = "disabled"
	} else if err := h.postgres.Ping(c.UserContext()); err != nil {
		h.logger.Warn("postgres readiness check failed", zap.Error(err))
		checks["postgres"] = "unavailable"
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	if h.redis == nil || h.redis.Client == nil {
		checks["redis"] = "disabled"
	} else if err := h.redis.Ping(c.UserContext()); err != nil {
		h.logger.Warn("redis readiness check failed", zap.Error(err))
		checks["redis"] = "unavailable"
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	status := "ok"
	code := fiber.StatusOK
	if !healthy {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "service": h.appName, "checks": checks})
}
