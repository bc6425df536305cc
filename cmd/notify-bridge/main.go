package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adzone/adserver/internal/config"
	"github.com/adzone/adserver/internal/db"
	"github.com/adzone/adserver/internal/events"
	"github.com/adzone/adserver/internal/notify"
	"go.uber.org/zap"
)

// Notify bridge: subscribes to admin events on Redis and forwards rentals and
// ad status changes to NOTIFY_WEBHOOK_URL.

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if cfg.RedisURL == "" || cfg.NotifyWebhookURL == "" {
		log.Fatal("REDIS_URL and NOTIFY_WEBHOOK_URL are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	subscriber := events.NewRedisBus(rdb, log)
	forwarder := notify.NewForwarder(cfg.NotifyWebhookURL, 10*time.Second, log)

	err = subscriber.Subscribe(ctx, events.StreamAdmin, func(event events.Event) {
		if err := forwarder.Forward(ctx, event); err != nil {
			log.Warn("failed to forward notification", zap.String("type", event.Type), zap.Error(err))
		}
	})
	if err != nil {
		log.Fatal("failed to subscribe", zap.String("stream", events.StreamAdmin), zap.Error(err))
	}

	log.Info("notify-bridge started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notify-bridge")
	cancel()
}
