package events

import (
	"context"
	"sync"
)

// LocalBus fans events out to in-process subscribers. It stands in for Redis
// when a single instance runs without REDIS_URL.
type LocalBus struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[string][]chan Event)}
}

// Publish never blocks; subscribers that fall behind miss events.
func (b *LocalBus) Publish(_ context.Context, stream string, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[stream] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	ch := make(chan Event, 64)

	b.mu.Lock()
	b.subs[stream] = append(b.subs[stream], ch)
	b.mu.Unlock()

	go func() {
		defer b.remove(stream, ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				handler(ev)
			}
		}
	}()
	return nil
}

func (b *LocalBus) remove(stream string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[stream]
	for i, c := range subs {
		if c == ch {
			b.subs[stream] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
