package handlers

import (
	"github.com/adzone/adserver/internal/http/dto"
	"github.com/adzone/adserver/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StatsHandler struct {
	analytics *services.AnalyticsService
	log       *zap.Logger
}

func NewStatsHandler(analytics *services.AnalyticsService, log *zap.Logger) *StatsHandler {
	return &StatsHandler{analytics: analytics, log: log}
}

// WindowStats serves the compact seven-day view.
func (h *StatsHandler) WindowStats(c *fiber.Ctx) error {
	stats, err := h.analytics.WindowStats(c.Context())
	if err != nil {
		h.log.Error("failed to compute window stats", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to compute stats")
	}
	return c.JSON(stats)
}

// LifetimeStats serves all-time counts per ad.
func (h *StatsHandler) LifetimeStats(c *fiber.Ctx) error {
	stats, err := h.analytics.LifetimeStats(c.Context())
	if err != nil {
		h.log.Error("failed to compute lifetime stats", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to compute stats")
	}
	return c.JSON(dto.LifetimeStatsResponse{Ads: stats})
}

func Healthz(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true})
}
