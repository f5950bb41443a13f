package handler

import (
	"context"
	"time"

	"quiz-byte/internal/domain"
	"quiz-byte/internal/dto"
	"quiz-byte/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	serviceName      = "quizgen"
	cachePingTimeout = 2 * time.Second
)

// HealthHandler reports liveness and, when Redis is configured, cache health.
type HealthHandler struct {
	cache domain.Cache
}

// NewHealthHandler accepts a nil cache when Redis is not configured.
func NewHealthHandler(cache domain.Cache) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Health godoc
// @Summary Service health
// @Description Reports liveness and pings the Redis cache when one is configured
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router / [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if h.cache == nil {
		return c.JSON(dto.HealthResponse{OK: true, Service: serviceName, Cache: dto.CacheDisabled})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), cachePingTimeout)
	defer cancel()
	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Cache ping failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{OK: false, Service: serviceName, Cache: dto.CacheDown})
	}
	return c.JSON(dto.HealthResponse{OK: true, Service: serviceName, Cache: dto.CacheUp})
}
