package handlers

import (
	"errors"

	"github.com/adzone/adserver/internal/http/dto"
	"github.com/adzone/adserver/internal/models"
	"github.com/adzone/adserver/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ZoneHandler struct {
	zones    *services.ZoneService
	validate *validator.Validate
	log      *zap.Logger
}

func NewZoneHandler(zones *services.ZoneService, validate *validator.Validate, log *zap.Logger) *ZoneHandler {
	return &ZoneHandler{zones: zones, validate: validate, log: log}
}

func (h *ZoneHandler) parse(c *fiber.Ctx) (models.Zone, error) {
	var req dto.ZoneRequest
	if err := c.BodyParser(&req); err != nil {
		return models.Zone{}, errors.New("invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return models.Zone{}, errors.New(dto.ValidationMessage(err))
	}
	return models.Zone{Name: req.Name, Width: req.Width, Height: req.Height}, nil
}

func (h *ZoneHandler) CreateZone(c *fiber.Ctx) error {
	z, err := h.parse(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.zones.Create(c.Context(), &z); err != nil {
		h.log.Error("failed to create zone", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to create zone")
	}
	return c.Status(fiber.StatusOK).JSON(z)
}

func (h *ZoneHandler) ListZones(c *fiber.Ctx) error {
	zones, err := h.zones.List(c.Context())
	if err != nil {
		h.log.Error("failed to list zones", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list zones")
	}
	return c.JSON(zones)
}

func (h *ZoneHandler) GetZone(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid zone id")
	}
	z, err := h.zones.Get(c.Context(), id)
	if err != nil {
		return h.zoneError(c, err)
	}
	return c.JSON(z)
}

func (h *ZoneHandler) UpdateZone(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid zone id")
	}
	upd, err := h.parse(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	z, err := h.zones.Update(c.Context(), id, upd)
	if err != nil {
		return h.zoneError(c, err)
	}
	return c.JSON(z)
}

func (h *ZoneHandler) DeleteZone(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid zone id")
	}
	if err := h.zones.Delete(c.Context(), id); err != nil {
		return h.zoneError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *ZoneHandler) zoneError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrZoneNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Zone not found")
	}
	h.log.Error("zone request failed", zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, "internal error")
}
