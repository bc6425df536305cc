package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adzone/adserver/internal/config"
	"github.com/adzone/adserver/internal/seo"
	"go.uber.org/zap"
)

// One-shot job: read the live sitemap, submit its URLs to IndexNow and ping
// the sitemap endpoints. Exits non-zero when nothing could be submitted.

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	client := seo.NewClient(30*time.Second, 3, log)
	sitemapURL := cfg.SitemapURL()

	urls, err := client.FetchSitemapURLs(ctx, sitemapURL)
	if err != nil {
		log.Error("failed to fetch sitemap", zap.String("sitemap", sitemapURL), zap.Error(err))
		os.Exit(1)
	}
	log.Info("sitemap loaded", zap.String("sitemap", sitemapURL), zap.Int("urls", len(urls)))

	ok := true
	if cfg.IndexNowKey == "" {
		log.Warn("INDEXNOW_KEY is not set, skipping IndexNow")
	} else if err := client.SubmitIndexNow(ctx, cfg.SiteHost, cfg.IndexNowKey, urls); err != nil {
		log.Error("indexnow submission failed", zap.Error(err))
		ok = false
	}

	failed := client.PingSitemap(ctx, sitemapURL)
	if len(failed) == len(client.PingEndpoints) && !ok {
		log.Error("no search engine accepted the sitemap")
		os.Exit(1)
	}
	log.Info("seo ping finished", zap.Int("ping_failures", len(failed)))
}
