package http

import (
	"time"

	"github.com/adzone/adserver/internal/config"
	"github.com/adzone/adserver/internal/http/handlers"
	"github.com/adzone/adserver/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const staticMaxAge = 30 * 24 * 60 * 60

type Handlers struct {
	Zones   *handlers.ZoneHandler
	Ads     *handlers.AdHandler
	Stats   *handlers.StatsHandler
	Serving *handlers.ServingHandler
	Admin   *handlers.AdminHandler
	Public  *handlers.PublicHandler
	WS      *handlers.WSHub
}

// NewApp returns a fiber app whose error handler matches the JSON error shape.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	gatherer prometheus.Gatherer,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-ADMIN-KEY",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(compress.New())

	// Health
	app.Get("/healthz", handlers.Healthz)
	app.Get("/health", handlers.Healthz)
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Serving (rate limited, never indexed)
	limit := middleware.RateLimit(rdb, cfg.RateLimitPerMinute, time.Minute)
	app.Get("/render", limit, middleware.NoIndex(), h.Serving.Render)
	app.Get("/click", limit, middleware.NoIndex(), h.Serving.Click)
	app.Get("/embed.js", h.Serving.EmbedJS)
	app.Get("/ads/rent", h.Serving.RentForm)
	app.Post("/ads/rent", limit, h.Serving.SubmitRental)

	// JSON API
	app.Post("/zones/", h.Zones.CreateZone)
	app.Get("/zones/", h.Zones.ListZones)
	app.Get("/zones/:id", h.Zones.GetZone)
	app.Put("/zones/:id", h.Zones.UpdateZone)
	app.Delete("/zones/:id", h.Zones.DeleteZone)

	app.Post("/ads/", h.Ads.CreateAd)
	app.Get("/ads/", h.Ads.ListAds)
	app.Get("/ads/:id<int>", h.Ads.GetAd)
	app.Put("/ads/:id<int>", h.Ads.UpdateAd)
	app.Delete("/ads/:id<int>", h.Ads.DeleteAd)

	app.Get("/api/stats.json", h.Stats.WindowStats)
	app.Get("/stats.json", h.Stats.LifetimeStats)

	// Admin
	app.Post("/admin/login", h.Admin.Login)
	app.Get("/admin/debug/region", h.Admin.Region)

	admin := app.Group("/admin", middleware.AdminAuth(cfg, log))
	admin.Get("", h.Admin.Home)
	admin.Get("/analytics", h.Admin.Analytics)
	admin.Get("/zones", h.Admin.Zones)
	admin.Post("/zones", h.Admin.CreateZone)
	admin.Post("/zones/:id/delete", h.Admin.DeleteZone)
	admin.Get("/ads", h.Admin.Ads)
	admin.Post("/ads", h.Admin.CreateAd)
	admin.Post("/ads/:id/delete", h.Admin.DeleteAd)
	admin.Post("/ads/:id/disable", h.Admin.DisableAd)
	admin.Post("/ads/:id/enable", h.Admin.EnableAd)

	// Public pages
	app.Get("/", h.Public.Home)
	app.Get("/stats", h.Public.Stats)
	app.Get("/publisher", h.Public.Publisher)
	app.Get("/blog", h.Public.BlogIndex)
	app.Get("/blog/:slug", h.Public.BlogPost)
	app.Get("/ads.txt", h.Public.SiteFile("ads.txt", fiber.MIMETextPlainCharsetUTF8))
	app.Get("/robots.txt", h.Public.SiteFile("robots.txt", fiber.MIMETextPlainCharsetUTF8))
	app.Get("/sitemap.xml", h.Public.SiteFile("sitemap.xml", fiber.MIMEApplicationXMLCharsetUTF8))
	if cfg.IndexNowKey != "" {
		app.Get("/"+cfg.IndexNowKey+".txt", h.Public.IndexNowKey)
	}

	static := fiber.Static{Compress: true, MaxAge: staticMaxAge}
	app.Static("/static", cfg.StaticDir, static)
	app.Static("/tools", cfg.ToolsDir, fiber.Static{Compress: true, MaxAge: staticMaxAge, Index: "index.html"})

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws/events", websocket.New(h.WS.HandleWS))
}
