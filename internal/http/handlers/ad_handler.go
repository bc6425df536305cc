package handlers

import (
	"errors"
	"strconv"

	"github.com/adzone/adserver/internal/http/dto"
	"github.com/adzone/adserver/internal/repositories"
	"github.com/adzone/adserver/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdHandler struct {
	ads      *services.AdService
	validate *validator.Validate
	log      *zap.Logger
}

func NewAdHandler(ads *services.AdService, validate *validator.Validate, log *zap.Logger) *AdHandler {
	return &AdHandler{ads: ads, validate: validate, log: log}
}

func (h *AdHandler) parse(c *fiber.Ctx) (dto.AdRequest, error) {
	var req dto.AdRequest
	if err := c.BodyParser(&req); err != nil {
		return req, errors.New("invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return req, errors.New(dto.ValidationMessage(err))
	}
	return req, nil
}

func (h *AdHandler) CreateAd(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	ad := adFromRequest(req)
	if err := h.ads.Create(c.Context(), &ad); err != nil {
		return h.adError(c, err)
	}
	return c.JSON(ad)
}

// ListAds accepts optional zone and active=true filters.
func (h *AdHandler) ListAds(c *fiber.Ctx) error {
	var f repositories.AdFilter
	if v := c.Query("zone"); v != "" {
		zoneID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid zone")
		}
		f.ZoneID = &zoneID
	}
	f.ActiveOnly = c.QueryBool("active", false)

	ads, err := h.ads.List(c.Context(), f)
	if err != nil {
		h.log.Error("failed to list ads", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list ads")
	}
	return c.JSON(ads)
}

func (h *AdHandler) GetAd(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid ad id")
	}
	ad, err := h.ads.Get(c.Context(), id)
	if err != nil {
		return h.adError(c, err)
	}
	return c.JSON(ad)
}

func (h *AdHandler) UpdateAd(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid ad id")
	}
	req, err := h.parse(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	ad, err := h.ads.Update(c.Context(), id, adFromRequest(req))
	if err != nil {
		return h.adError(c, err)
	}
	return c.JSON(ad)
}

func (h *AdHandler) DeleteAd(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid ad id")
	}
	if err := h.ads.Delete(c.Context(), id); err != nil {
		return h.adError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *AdHandler) adError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAdNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Ad not found")
	case errors.Is(err, services.ErrInvalidZone):
		return errorJSON(c, fiber.StatusBadRequest, "Invalid zone_id")
	}
	h.log.Error("ad request failed", zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, "internal error")
}
