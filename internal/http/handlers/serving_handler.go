package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/adzone/adserver/internal/http/dto"
	"github.com/adzone/adserver/internal/services"
	"github.com/adzone/adserver/internal/templates"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultZoneID = 1

type ServingHandler struct {
	serving  *services.ServingService
	ads      *services.AdService
	zones    *services.ZoneService
	tmpl     *templates.Manager
	validate *validator.Validate
	host     string
	log      *zap.Logger
}

func NewServingHandler(
	serving *services.ServingService,
	ads *services.AdService,
	zones *services.ZoneService,
	tmpl *templates.Manager,
	validate *validator.Validate,
	host string,
	log *zap.Logger,
) *ServingHandler {
	return &ServingHandler{
		serving:  serving,
		ads:      ads,
		zones:    zones,
		tmpl:     tmpl,
		validate: validate,
		host:     host,
		log:      log,
	}
}

// Render serves one ad for ?zone= (default 1) wrapped in its click link.
func (h *ServingHandler) Render(c *fiber.Ctx) error {
	zoneID := int64(defaultZoneID)
	if v := c.Query("zone"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid zone")
		}
		zoneID = id
	}

	ad, err := h.serving.Render(c.Context(), zoneID, c.IP())
	if err != nil {
		var noAds *services.NoEligibleAdsError
		switch {
		case errors.Is(err, services.ErrZoneNotFound):
			return errorJSON(c, fiber.StatusNotFound,
				fmt.Sprintf("Zone %d not found. Create a zone first via /zones/ or /admin/zones", zoneID))
		case errors.As(err, &noAds):
			return errorJSON(c, fiber.StatusNotFound, noAds.Error())
		}
		h.log.Error("render failed", zap.Int64("zone_id", zoneID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to render ad")
	}

	var buf bytes.Buffer
	if err := h.tmpl.RenderSnippet(&buf, fmt.Sprintf("/click?id=%d", ad.ID), ad.HTML); err != nil {
		h.log.Error("snippet render failed", zap.Int64("ad_id", ad.ID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to render ad")
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// Click records the click and redirects to the configured target.
func (h *ServingHandler) Click(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		return errorJSON(c, fiber.StatusBadRequest, "invalid ad id")
	}

	target, err := h.serving.Click(c.Context(), id, c.IP())
	if errors.Is(err, services.ErrAdNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Ad not found")
	}
	if err != nil {
		h.log.Error("click failed", zap.Int64("ad_id", id), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to record click")
	}
	return c.Redirect(target, fiber.StatusFound)
}

func (h *ServingHandler) EmbedJS(c *fiber.Ctx) error {
	zone, _ := strconv.ParseInt(c.Query("zone"), 10, 64)
	var buf bytes.Buffer
	if err := h.tmpl.RenderEmbedJS(&buf, zone); err != nil {
		h.log.Error("embed.js render failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to render script")
	}
	c.Type("js", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *ServingHandler) RentForm(c *fiber.Ctx) error {
	zones, err := h.zones.List(c.Context())
	if err != nil {
		h.log.Error("failed to list zones", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load zones")
	}
	c.Type("html", "utf-8")
	return h.tmpl.Render(c, "ads/rent.html", templates.RentPage{
		Page:    templates.NewPage(h.host),
		Zones:   zones,
		Success: c.QueryBool("success", false),
	})
}

func (h *ServingHandler) SubmitRental(c *fiber.Ctx) error {
	var req dto.AdRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, dto.ValidationMessage(err))
	}

	ad := adFromRequest(req)
	if err := h.ads.SubmitRental(c.Context(), &ad); err != nil {
		if errors.Is(err, services.ErrInvalidZone) {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid zone ID")
		}
		h.log.Error("rental submission failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to submit ad")
	}
	h.log.Info("ad rental submitted", zap.Int64("ad_id", ad.ID), zap.Int64("zone_id", ad.ZoneID))
	return c.Redirect("/ads/rent?success=true", fiber.StatusSeeOther)
}
