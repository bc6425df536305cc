package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adzone/adserver/internal/selection"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppEnv string

	// Database
	DatabaseURL      string
	LocalDatabaseURL string
	RedisURL         string // optional; events and rate limiting are disabled without it

	// Admin
	AdminKey      string // empty means admin routes are open (local development)
	JWTSecret     string
	JWTExpiration time.Duration

	// Serving
	SmartlinkURL       string // click redirect target; empty redirects to the ad's own URL
	RateLimitPerMinute int
	GeoIPDBPath        string

	// Selection
	SelectionWindowDays   int
	CTRMultiplier         float64
	MaxCTRBoost           float64
	ExplorationThreshold  int
	ExplorationMultiplier float64

	// Site content
	BlogDir      string
	StaticDir    string
	ToolsDir     string
	SiteFilesDir string // ads.txt, robots.txt, sitemap.xml
	SiteHost     string
	IndexNowKey  string

	// Notifications
	NotifyWebhookURL string

	// Server
	APIPort string
	Region  string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", EnvProduction),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		LocalDatabaseURL: getEnv("LOCAL_DATABASE_URL", "file:adserver.db"),
		RedisURL:         getEnv("REDIS_URL", ""),

		AdminKey:      getEnv("ADMIN_KEY", ""),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiration: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,

		SmartlinkURL:       getEnv("SMARTLINK_URL", ""),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		GeoIPDBPath:        getEnv("GEOIP_DB_PATH", ""),

		SelectionWindowDays:   getEnvInt("SELECTION_WINDOW_DAYS", selection.DefaultWindowDays),
		CTRMultiplier:         getEnvFloat("CTR_MULTIPLIER", 10),
		MaxCTRBoost:           getEnvFloat("MAX_CTR_BOOST", 2.0),
		ExplorationThreshold:  getEnvInt("EXPLORATION_THRESHOLD", 100),
		ExplorationMultiplier: getEnvFloat("EXPLORATION_MULTIPLIER", 1.5),

		BlogDir:      getEnv("BLOG_DIR", "templates/public"),
		StaticDir:    getEnv("STATIC_DIR", "static"),
		ToolsDir:     getEnv("TOOLS_DIR", "tools"),
		SiteFilesDir: getEnv("SITE_FILES_DIR", "."),
		SiteHost:     getEnv("SITE_HOST", "localhost:8000"),
		IndexNowKey:  getEnv("INDEXNOW_KEY", ""),

		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),

		APIPort: getEnv("API_PORT", "8000"),
		Region:  getEnv("FLY_REGION", "unknown"),
	}

	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// EffectiveDatabaseURL picks the local SQLite database in development and
// DATABASE_URL everywhere else.
func (c *Config) EffectiveDatabaseURL() (string, error) {
	if c.IsDevelopment() {
		return c.LocalDatabaseURL, nil
	}
	if c.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	return c.DatabaseURL, nil
}

// Selection returns the weighting parameters for the ad selector.
func (c *Config) Selection() selection.Config {
	return selection.Config{
		WindowDays:            c.SelectionWindowDays,
		CTRMultiplier:         c.CTRMultiplier,
		MaxCTRBoost:           c.MaxCTRBoost,
		ExplorationThreshold:  int64(c.ExplorationThreshold),
		ExplorationMultiplier: c.ExplorationMultiplier,
	}
}

// SitemapURL is the public location of sitemap.xml.
func (c *Config) SitemapURL() string {
	return fmt.Sprintf("https://%s/sitemap.xml", c.SiteHost)
}

func (c *Config) Validate(log *zap.Logger) {
	if c.AdminKey == "" {
		log.Warn("ADMIN_KEY is not set, admin routes are open")
	}
	if c.JWTSecret == "change-me-in-production" && !c.IsDevelopment() {
		log.Warn("JWT_SECRET is default, change in production")
	}
	if c.SelectionWindowDays <= 0 {
		log.Warn("SELECTION_WINDOW_DAYS must be positive, using default",
			zap.Int("value", c.SelectionWindowDays))
		c.SelectionWindowDays = selection.DefaultWindowDays
	}
	if c.RedisURL == "" {
		log.Warn("REDIS_URL is not set, events and rate limiting disabled")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
