package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/adzone/adserver/internal/models"
)

// EventCounter is the slice of the event store the aggregator reads from.
type EventCounter interface {
	CountSince(ctx context.Context, kind models.EventKind, cutoff time.Time) (map[int64]int64, error)
}

// Aggregator produces per-ad impression and click counts over a trailing window.
type Aggregator struct {
	events EventCounter
	clock  Clock
}

func NewAggregator(events EventCounter, clock Clock) *Aggregator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Aggregator{events: events, clock: clock}
}

// Cutoff returns the earliest timestamp still inside a window of the given length.
func (a *Aggregator) Cutoff(windowDays int) time.Time {
	return a.clock.Now().Add(-time.Duration(windowDays) * 24 * time.Hour)
}

// RangeCounts counts events with a timestamp at or after now minus windowDays.
// Ads without events in the window are absent from the returned maps.
func (a *Aggregator) RangeCounts(ctx context.Context, windowDays int) (impressions, clicks map[int64]int64, err error) {
	if windowDays <= 0 {
		return nil, nil, ErrInvalidWindow
	}
	cutoff := a.Cutoff(windowDays)

	impressions, err = a.events.CountSince(ctx, models.EventImpression, cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("count impressions: %w", err)
	}
	clicks, err = a.events.CountSince(ctx, models.EventClick, cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("count clicks: %w", err)
	}
	return impressions, clicks, nil
}
