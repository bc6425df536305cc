package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/adzone/adserver/internal/models"
	"go.uber.org/zap"
)

// EventStore is what the selector needs from persistence: windowed counts
// for scoring and an append for the impression side effect.
type EventStore interface {
	EventCounter
	Record(ctx context.Context, kind models.EventKind, adID int64, country string, at time.Time) error
}

// Selector picks an ad for a zone using CTR-weighted random selection.
type Selector struct {
	cfg        Config
	events     EventStore
	aggregator *Aggregator
	calculator *WeightCalculator
	rnd        RandomSource
	clock      Clock
	log        *zap.Logger
}

type Option func(*Selector)

func WithClock(c Clock) Option {
	return func(s *Selector) { s.clock = c }
}

func WithRandomSource(r RandomSource) Option {
	return func(s *Selector) { s.rnd = r }
}

func NewSelector(cfg Config, events EventStore, log *zap.Logger, opts ...Option) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Selector{
		cfg:    cfg.withDefaults(),
		events: events,
		rnd:    DefaultSource(),
		clock:  SystemClock{},
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aggregator = NewAggregator(events, s.clock)
	s.calculator = NewWeightCalculator(s.cfg, log)
	return s
}

// Clock is the time source used for impressions and window cutoffs.
func (s *Selector) Clock() Clock {
	return s.clock
}

// Aggregator exposes the selector's aggregator so reporting shares its clock.
func (s *Selector) Aggregator() *Aggregator {
	return s.aggregator
}

// SelectAdForZone scores the given active ads of one zone and draws one.
func (s *Selector) SelectAdForZone(ctx context.Context, ads []models.Ad) (models.Ad, error) {
	if len(ads) == 0 {
		return models.Ad{}, ErrNoAds
	}

	impressions, clicks, err := s.aggregator.RangeCounts(ctx, s.cfg.WindowDays)
	if err != nil {
		return models.Ad{}, fmt.Errorf("range counts: %w", err)
	}

	weights := s.calculator.Calculate(ads, impressions, clicks)
	ad, err := WeightedChoice(s.rnd, ads, weights)
	if err != nil {
		return models.Ad{}, err
	}

	s.log.Debug("ad selected",
		zap.Int64("ad_id", ad.ID),
		zap.Int64("zone_id", ad.ZoneID),
		zap.Int("candidates", len(ads)),
	)
	return ad, nil
}

// RecordImpression appends an impression for the served ad.
func (s *Selector) RecordImpression(ctx context.Context, adID int64) error {
	return s.RecordImpressionFrom(ctx, adID, "")
}

// RecordImpressionFrom is RecordImpression with a country tag.
func (s *Selector) RecordImpressionFrom(ctx context.Context, adID int64, country string) error {
	if err := s.events.Record(ctx, models.EventImpression, adID, country, s.clock.Now()); err != nil {
		return fmt.Errorf("record impression for ad %d: %w", adID, err)
	}
	return nil
}
