package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adzone/adserver/internal/auth"
	"github.com/adzone/adserver/internal/config"
	"github.com/adzone/adserver/internal/http/dto"
	"github.com/adzone/adserver/internal/models"
	"github.com/adzone/adserver/internal/repositories"
	"github.com/adzone/adserver/internal/services"
	"github.com/adzone/adserver/internal/templates"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	cfg       *config.Config
	zones     *services.ZoneService
	ads       *services.AdService
	analytics *services.AnalyticsService
	tmpl      *templates.Manager
	validate  *validator.Validate
	log       *zap.Logger
}

func NewAdminHandler(
	cfg *config.Config,
	zones *services.ZoneService,
	ads *services.AdService,
	analytics *services.AnalyticsService,
	tmpl *templates.Manager,
	validate *validator.Validate,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		cfg:       cfg,
		zones:     zones,
		ads:       ads,
		analytics: analytics,
		tmpl:      tmpl,
		validate:  validate,
		log:       log,
	}
}

// Login exchanges the admin key for a session token.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, dto.ValidationMessage(err))
	}
	if h.cfg.AdminKey == "" || !auth.CheckAdminKey(h.cfg.AdminKey, req.AdminKey) {
		return errorJSON(c, fiber.StatusUnauthorized, "invalid admin key")
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to issue token", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(dto.LoginResponse{Token: token, ExpiresAt: time.Now().Add(h.cfg.JWTExpiration).UTC()})
}

func (h *AdminHandler) page() templates.Page {
	return templates.NewPage(h.cfg.SiteHost)
}

func (h *AdminHandler) render(c *fiber.Ctx, name string, data any) error {
	c.Type("html", "utf-8")
	if err := h.tmpl.Render(c, name, data); err != nil {
		h.log.Error("template render failed", zap.String("template", name), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to render page")
	}
	return nil
}

func (h *AdminHandler) Home(c *fiber.Ctx) error {
	return h.render(c, "admin/home.html", h.page())
}

func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	rows, err := h.analytics.CTRData(c.Context(), days)
	if errors.Is(err, services.ErrInvalidDays) {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		h.log.Error("analytics failed", zap.Int("days", days), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return h.render(c, "admin/analytics.html", templates.AnalyticsPage{Page: h.page(), Days: days, Rows: rows})
}

func (h *AdminHandler) Zones(c *fiber.Ctx) error {
	zones, err := h.zones.List(c.Context())
	if err != nil {
		h.log.Error("failed to list zones", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list zones")
	}
	return h.render(c, "admin/zones.html", templates.ZonesPage{Page: h.page(), Zones: zones})
}

func (h *AdminHandler) CreateZone(c *fiber.Ctx) error {
	var req dto.ZoneRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, dto.ValidationMessage(err))
	}
	z := models.Zone{Name: req.Name, Width: req.Width, Height: req.Height}
	if err := h.zones.Create(c.Context(), &z); err != nil {
		h.log.Error("failed to create zone", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to create zone")
	}
	return c.Redirect("/admin/zones", fiber.StatusSeeOther)
}

func (h *AdminHandler) DeleteZone(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid zone id")
	}
	err := h.zones.Delete(c.Context(), id)
	if errors.Is(err, services.ErrZoneNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Zone not found")
	}
	if err != nil {
		h.log.Error("failed to delete zone", zap.Int64("zone_id", id), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete zone")
	}
	return c.Redirect("/admin/zones", fiber.StatusSeeOther)
}

// Ads lists active ads, optionally for one zone.
func (h *AdminHandler) Ads(c *fiber.Ctx) error {
	zones, err := h.zones.List(c.Context())
	if err != nil {
		h.log.Error("failed to list zones", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list zones")
	}

	f := repositories.AdFilter{ActiveOnly: true}
	var zoneFilter int64
	if v := strings.TrimSpace(c.Query("zone")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			zoneFilter = id
			f.ZoneID = &zoneFilter
		}
	}

	ads, err := h.ads.List(c.Context(), f)
	if err != nil {
		h.log.Error("failed to list ads", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list ads")
	}
	return h.render(c, "admin/ads.html", templates.AdsPage{Page: h.page(), Zones: zones, Ads: ads, ZoneFilter: zoneFilter})
}

func (h *AdminHandler) CreateAd(c *fiber.Ctx) error {
	var req dto.AdRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, dto.ValidationMessage(err))
	}
	ad := adFromRequest(req)
	err := h.ads.Create(c.Context(), &ad)
	if errors.Is(err, services.ErrInvalidZone) {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid zone_id")
	}
	if err != nil {
		h.log.Error("failed to create ad", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to create ad")
	}
	return c.Redirect("/admin/ads", fiber.StatusSeeOther)
}

func (h *AdminHandler) DeleteAd(c *fiber.Ctx) error {
	return h.adAction(c, h.ads.Delete, "/admin/ads")
}

func (h *AdminHandler) DisableAd(c *fiber.Ctx) error {
	return h.adAction(c, h.ads.Disable, "/admin/analytics")
}

func (h *AdminHandler) EnableAd(c *fiber.Ctx) error {
	return h.adAction(c, h.ads.Enable, "/admin/analytics")
}

func (h *AdminHandler) adAction(c *fiber.Ctx, action func(ctx context.Context, id int64) error, redirect string) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid ad id")
	}
	err := action(c.Context(), id)
	if errors.Is(err, services.ErrAdNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Ad not found")
	}
	if err != nil {
		h.log.Error("ad action failed", zap.Int64("ad_id", id), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "internal error")
	}
	return c.Redirect(redirect, fiber.StatusSeeOther)
}

func (h *AdminHandler) Region(c *fiber.Ctx) error {
	return c.JSON(dto.RegionResponse{
		Region:   h.cfg.Region,
		ClientIP: c.IP(),
		Message:  fmt.Sprintf("Served from %s region", strings.ToUpper(h.cfg.Region)),
	})
}
