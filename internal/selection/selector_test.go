package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adzone/adserver/internal/models"
)

type recordedEvent struct {
	kind    models.EventKind
	adID    int64
	country string
	at      time.Time
}

type memoryEvents struct {
	events   []recordedEvent
	countErr error
}

func (m *memoryEvents) Record(_ context.Context, kind models.EventKind, adID int64, country string, at time.Time) error {
	m.events = append(m.events, recordedEvent{kind: kind, adID: adID, country: country, at: at})
	return nil
}

func (m *memoryEvents) CountSince(_ context.Context, kind models.EventKind, cutoff time.Time) (map[int64]int64, error) {
	if m.countErr != nil {
		return nil, m.countErr
	}
	counts := map[int64]int64{}
	for _, e := range m.events {
		if e.kind == kind && !e.at.Before(cutoff) {
			counts[e.adID]++
		}
	}
	return counts, nil
}

func (m *memoryEvents) add(kind models.EventKind, adID int64, at time.Time, n int) {
	for i := 0; i < n; i++ {
		m.events = append(m.events, recordedEvent{kind: kind, adID: adID, at: at})
	}
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestAggregator_RangeCounts(t *testing.T) {
	store := &memoryEvents{}
	store.add(models.EventImpression, 1, testNow.Add(-24*time.Hour), 1)
	store.add(models.EventImpression, 1, testNow.Add(-48*time.Hour), 1)
	store.add(models.EventClick, 1, testNow.Add(-24*time.Hour), 1)
	store.add(models.EventImpression, 1, testNow.Add(-30*24*time.Hour), 1)
	store.add(models.EventImpression, 2, testNow.Add(-40*24*time.Hour), 3)

	agg := NewAggregator(store, FixedClock(testNow))

	imps, clks, err := agg.RangeCounts(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imps[1] != 2 {
		t.Errorf("impressions[1] = %d, want 2", imps[1])
	}
	if clks[1] != 1 {
		t.Errorf("clicks[1] = %d, want 1", clks[1])
	}
	if _, ok := imps[2]; ok {
		t.Errorf("ad 2 has no events in window and should be absent, got %d", imps[2])
	}

	imps3, clks3, err := agg.RangeCounts(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imps3[1] != 2 || clks3[1] != 1 {
		t.Errorf("3 day window: impressions=%d clicks=%d, want 2 and 1", imps3[1], clks3[1])
	}
}

func TestAggregator_WindowEdges(t *testing.T) {
	window := 7
	cutoff := testNow.Add(-time.Duration(window) * 24 * time.Hour)

	tests := []struct {
		name     string
		at       time.Time
		included bool
	}{
		{"one second before cutoff", cutoff.Add(-time.Second), false},
		{"exactly at cutoff", cutoff, true},
		{"one second before now", testNow.Add(-time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryEvents{}
			store.add(models.EventImpression, 9, tt.at, 1)
			agg := NewAggregator(store, FixedClock(testNow))

			imps, _, err := agg.RangeCounts(context.Background(), window)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, got := imps[9]
			if got != tt.included {
				t.Errorf("included = %v, want %v", got, tt.included)
			}
		})
	}
}

func TestAggregator_InvalidWindow(t *testing.T) {
	agg := NewAggregator(&memoryEvents{}, FixedClock(testNow))
	for _, days := range []int{0, -1} {
		if _, _, err := agg.RangeCounts(context.Background(), days); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("RangeCounts(%d): got %v, want ErrInvalidWindow", days, err)
		}
	}
}

func TestSelector_EmptyAds(t *testing.T) {
	s := NewSelector(DefaultConfig(), &memoryEvents{}, nil)
	_, err := s.SelectAdForZone(context.Background(), nil)
	if !errors.Is(err, ErrNoAds) {
		t.Fatalf("got %v, want ErrNoAds", err)
	}
}

func TestSelector_SingleAd(t *testing.T) {
	s := NewSelector(DefaultConfig(), &memoryEvents{}, nil, WithClock(FixedClock(testNow)))
	ad, err := s.SelectAdForZone(context.Background(), []models.Ad{{ID: 5, ZoneID: 1, Weight: 1, IsActive: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ad.ID != 5 {
		t.Errorf("selected ad %d, want 5", ad.ID)
	}
}

func TestSelector_FavorsHighCTR(t *testing.T) {
	store := &memoryEvents{}
	// both ads are established; ad 1 converts at 20%, ad 2 at 0%
	store.add(models.EventImpression, 1, testNow.Add(-time.Hour), 500)
	store.add(models.EventClick, 1, testNow.Add(-time.Hour), 100)
	store.add(models.EventImpression, 2, testNow.Add(-time.Hour), 500)

	s := NewSelector(DefaultConfig(), store, nil,
		WithClock(FixedClock(testNow)),
		WithRandomSource(NewSeededSource(7)),
	)
	ads := []models.Ad{{ID: 1, Weight: 1}, {ID: 2, Weight: 1}}

	const n = 4000
	picks := map[int64]int{}
	for i := 0; i < n; i++ {
		ad, err := s.SelectAdForZone(context.Background(), ads)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		picks[ad.ID]++
	}

	// weights 3 and 1 → expect ~75%
	freq := float64(picks[1]) / n
	if freq < 0.70 || freq > 0.80 {
		t.Errorf("high CTR ad frequency = %.3f, want ~0.75", freq)
	}
}

func TestSelector_IgnoresEventsOutsideWindow(t *testing.T) {
	store := &memoryEvents{}
	// a stellar CTR long ago must not count
	store.add(models.EventImpression, 1, testNow.Add(-30*24*time.Hour), 500)
	store.add(models.EventClick, 1, testNow.Add(-30*24*time.Hour), 500)

	s := NewSelector(DefaultConfig(), store, nil, WithClock(FixedClock(testNow)))
	impressions, clicks, err := s.Aggregator().RangeCounts(context.Background(), DefaultWindowDays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(impressions) != 0 || len(clicks) != 0 {
		t.Errorf("expected empty counts, got %v %v", impressions, clicks)
	}
}

func TestSelector_CountErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	s := NewSelector(DefaultConfig(), &memoryEvents{countErr: boom}, nil)
	_, err := s.SelectAdForZone(context.Background(), []models.Ad{{ID: 1, Weight: 1}})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped db error", err)
	}
}

func TestSelector_RecordImpression(t *testing.T) {
	store := &memoryEvents{}
	s := NewSelector(DefaultConfig(), store, nil, WithClock(FixedClock(testNow)))

	if err := s.RecordImpression(context.Background(), 11); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.RecordImpressionFrom(context.Background(), 11, "DE"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(store.events))
	}
	e := store.events[1]
	if e.kind != models.EventImpression || e.adID != 11 || e.country != "DE" || !e.at.Equal(testNow) {
		t.Errorf("unexpected event %+v", e)
	}
}
