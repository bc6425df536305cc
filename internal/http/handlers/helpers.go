package handlers

import (
	"strconv"

	"github.com/adzone/adserver/internal/http/dto"
	"github.com/adzone/adserver/internal/middleware"
	"github.com/adzone/adserver/internal/models"
	"github.com/gofiber/fiber/v2"
)

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(c)})
}

func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// adFromRequest applies the defaults for optional fields.
func adFromRequest(req dto.AdRequest) models.Ad {
	ad := models.Ad{
		ZoneID:   req.ZoneID,
		HTML:     req.HTML,
		URL:      req.URL,
		Weight:   models.DefaultAdWeight,
		IsActive: true,
	}
	if req.Weight != nil {
		ad.Weight = *req.Weight
	}
	if req.IsActive != nil {
		ad.IsActive = *req.IsActive
	}
	return ad
}
