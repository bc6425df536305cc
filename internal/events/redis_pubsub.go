package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus carries events between processes over Redis pub/sub. Delivery is
// at-most-once: subscribers that are not connected miss the event.
type RedisBus struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisBus(client *redis.Client, log *zap.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, stream string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, stream, data).Err(); err != nil {
		b.log.Warn("publish failed", zap.String("stream", stream), zap.String("type", event.Type), zap.Error(err))
		return err
	}
	return nil
}

// Subscribe returns once Redis confirms the subscription. Messages are handed
// to handler on a single goroutine until ctx is done.
func (b *RedisBus) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	sub := b.client.Subscribe(ctx, stream)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return err
	}

	go func() {
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if event, ok := b.decode(stream, msg.Payload); ok {
					handler(event)
				}
			}
		}
	}()
	return nil
}

func (b *RedisBus) decode(stream, payload string) (Event, bool) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		b.log.Error("failed to unmarshal event", zap.String("stream", stream), zap.Error(err))
		return Event{}, false
	}
	return event, true
}
