package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adzone/adserver/internal/config"
	"github.com/adzone/adserver/internal/db"
	"github.com/adzone/adserver/internal/events"
	"github.com/adzone/adserver/internal/geo"
	apphttp "github.com/adzone/adserver/internal/http"
	"github.com/adzone/adserver/internal/http/dto"
	"github.com/adzone/adserver/internal/http/handlers"
	"github.com/adzone/adserver/internal/metrics"
	"github.com/adzone/adserver/internal/repositories"
	"github.com/adzone/adserver/internal/repositories/sqlite"
	"github.com/adzone/adserver/internal/selection"
	"github.com/adzone/adserver/internal/services"
	"github.com/adzone/adserver/internal/templates"
	"github.com/adzone/adserver/migrations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, _ := zap.NewProduction()
	if cfg.IsDevelopment() {
		log, _ = zap.NewDevelopment()
	}
	defer log.Sync()

	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	stores, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer stores.Close()

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	// Events
	var (
		publisher  events.Publisher
		subscriber events.Subscriber
	)
	if rdb != nil {
		defer rdb.Close()
		bus := events.NewRedisBus(rdb, log)
		publisher, subscriber = bus, bus
	} else {
		bus := events.NewLocalBus()
		publisher, subscriber = bus, bus
	}

	locator, err := geo.Open(cfg.GeoIPDBPath)
	if err != nil {
		log.Warn("geoip database unavailable, country lookup disabled", zap.Error(err))
		locator = geo.NopLocator{}
	}
	defer locator.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Services
	selector := selection.NewSelector(cfg.Selection(), stores.Events, log)
	zoneService := services.NewZoneService(stores.Zones, publisher, log)
	adService := services.NewAdService(stores.Ads, stores.Zones, publisher, log)
	servingService := services.NewServingService(services.ServingDeps{
		Zones:        stores.Zones,
		Ads:          stores.Ads,
		Events:       stores.Events,
		Selector:     selector,
		Geo:          locator,
		Metrics:      metrics.New(reg),
		Publisher:    publisher,
		SmartlinkURL: cfg.SmartlinkURL,
	}, log)
	analyticsService := services.NewAnalyticsService(stores.Ads, stores.Events, selector.Aggregator())

	tmpl, err := templates.NewManager()
	if err != nil {
		log.Fatal("failed to parse templates", zap.Error(err))
	}
	validate := dto.NewValidator()

	// Handlers
	wsHub := handlers.NewWSHub(cfg, subscriber, log)
	h := apphttp.Handlers{
		Zones:   handlers.NewZoneHandler(zoneService, validate, log),
		Ads:     handlers.NewAdHandler(adService, validate, log),
		Stats:   handlers.NewStatsHandler(analyticsService, log),
		Serving: handlers.NewServingHandler(servingService, adService, zoneService, tmpl, validate, cfg.SiteHost, log),
		Admin:   handlers.NewAdminHandler(cfg, zoneService, adService, analyticsService, tmpl, validate, log),
		Public:  handlers.NewPublicHandler(cfg, tmpl, log),
		WS:      wsHub,
	}

	if err := wsHub.Start(ctx); err != nil {
		log.Fatal("failed to start ws hub", zap.Error(err))
	}

	app := apphttp.NewApp()
	apphttp.SetupRouter(app, cfg, log, rdb, reg, h)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting ad server", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

// openStores connects to SQLite/libsql or Postgres depending on the URL.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories.Stores, error) {
	url, err := cfg.EffectiveDatabaseURL()
	if err != nil {
		return repositories.Stores{}, err
	}

	if sqlite.IsSQLiteURL(url) {
		log.Info("using sqlite database", zap.String("url", url))
		return sqlite.NewStores(url)
	}

	pool, err := db.NewPostgresPool(ctx, url, log)
	if err != nil {
		return repositories.Stores{}, err
	}
	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		pool.Close()
		return repositories.Stores{}, fmt.Errorf("run migrations: %w", err)
	}
	return repositories.NewPostgresStores(pool), nil
}
