package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adzone/adserver/internal/events"
	"github.com/adzone/adserver/internal/geo"
	"github.com/adzone/adserver/internal/metrics"
	"github.com/adzone/adserver/internal/models"
	"github.com/adzone/adserver/internal/repositories"
	"github.com/adzone/adserver/internal/selection"
	"go.uber.org/zap"
)

// ServingService renders ads for zones and tracks the resulting events.
type ServingService struct {
	zones        repositories.ZoneStore
	ads          repositories.AdStore
	events       repositories.EventStore
	selector     *selection.Selector
	geo          geo.Locator
	metrics      *metrics.Metrics
	publisher    events.Publisher
	clock        selection.Clock
	smartlinkURL string
	log          *zap.Logger
}

type ServingDeps struct {
	Zones     repositories.ZoneStore
	Ads       repositories.AdStore
	Events    repositories.EventStore
	Selector  *selection.Selector
	Geo       geo.Locator
	Metrics   *metrics.Metrics
	Publisher events.Publisher
	// Clock stamps clicks. Nil means the selector's clock, so clicks and
	// impressions share one time source.
	Clock        selection.Clock
	SmartlinkURL string
}

func NewServingService(deps ServingDeps, log *zap.Logger) *ServingService {
	if deps.Geo == nil {
		deps.Geo = geo.NopLocator{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Clock == nil {
		deps.Clock = deps.Selector.Clock()
	}
	return &ServingService{
		zones:        deps.Zones,
		ads:          deps.Ads,
		events:       deps.Events,
		selector:     deps.Selector,
		geo:          deps.Geo,
		metrics:      deps.Metrics,
		publisher:    deps.Publisher,
		clock:        deps.Clock,
		smartlinkURL: deps.SmartlinkURL,
		log:          log,
	}
}

// Render picks an ad for zoneID and records an impression for it.
func (s *ServingService) Render(ctx context.Context, zoneID int64, ip string) (*models.Ad, error) {
	zone, err := s.zones.GetByID(ctx, zoneID)
	if errors.Is(err, repositories.ErrNotFound) {
		s.metrics.RecordRenderFailure(metrics.ReasonZoneNotFound)
		return nil, ErrZoneNotFound
	}
	if err != nil {
		s.metrics.RecordRenderFailure(metrics.ReasonError)
		return nil, err
	}

	ads, err := s.ads.ListActiveByZone(ctx, zoneID)
	if err != nil {
		s.metrics.RecordRenderFailure(metrics.ReasonError)
		return nil, err
	}
	if len(ads) == 0 {
		s.metrics.RecordRenderFailure(metrics.ReasonNoAds)
		total, err := s.ads.CountByZone(ctx, zoneID)
		if err != nil {
			return nil, err
		}
		return nil, &NoEligibleAdsError{ZoneID: zoneID, ZoneName: zone.Name, TotalAds: total}
	}

	start := time.Now()
	ad, err := s.selector.SelectAdForZone(ctx, ads)
	s.metrics.ObserveSelection(start)
	if err != nil {
		s.metrics.RecordRenderFailure(metrics.ReasonError)
		return nil, fmt.Errorf("select ad for zone %d: %w", zoneID, err)
	}

	country := s.geo.Country(ip)
	if err := s.selector.RecordImpressionFrom(ctx, ad.ID, country); err != nil {
		s.metrics.RecordRenderFailure(metrics.ReasonError)
		return nil, err
	}
	s.metrics.RecordImpression(zoneID)

	_ = s.publisher.Publish(ctx, events.StreamServing, events.New(events.EventImpressionRecorded, map[string]any{
		"ad_id":   ad.ID,
		"zone_id": zoneID,
		"country": country,
	}))

	return &ad, nil
}

// Click records a click on adID and returns where the visitor goes next.
func (s *ServingService) Click(ctx context.Context, adID int64, ip string) (string, error) {
	ad, err := s.ads.GetByID(ctx, adID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrAdNotFound
	}
	if err != nil {
		return "", err
	}

	country := s.geo.Country(ip)
	if err := s.events.Record(ctx, models.EventClick, ad.ID, country, s.clock.Now()); err != nil {
		return "", fmt.Errorf("record click for ad %d: %w", ad.ID, err)
	}
	s.metrics.RecordClick()

	_ = s.publisher.Publish(ctx, events.StreamServing, events.New(events.EventClickRecorded, map[string]any{
		"ad_id":   ad.ID,
		"zone_id": ad.ZoneID,
		"country": country,
	}))

	return s.ClickTarget(ad), nil
}

// ClickTarget is the configured smartlink when set, otherwise the ad's own URL.
func (s *ServingService) ClickTarget(ad *models.Ad) string {
	if s.smartlinkURL != "" {
		return s.smartlinkURL
	}
	return ad.URL
}
