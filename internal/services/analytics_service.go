package services

import (
	"context"

	"github.com/adzone/adserver/internal/models"
	"github.com/adzone/adserver/internal/repositories"
	"github.com/adzone/adserver/internal/selection"
)

const (
	maxAnalyticsDays = 90
	snippetLength    = 100
)

type AnalyticsService struct {
	ads        repositories.AdStore
	events     repositories.EventStore
	aggregator *selection.Aggregator
}

func NewAnalyticsService(ads repositories.AdStore, events repositories.EventStore, aggregator *selection.Aggregator) *AnalyticsService {
	return &AnalyticsService{ads: ads, events: events, aggregator: aggregator}
}

// CTRData returns windowed performance for every active ad. CTR is a fraction.
func (s *AnalyticsService) CTRData(ctx context.Context, days int) ([]models.AdPerformance, error) {
	if days < 1 || days > maxAnalyticsDays {
		return nil, ErrInvalidDays
	}
	imps, clks, err := s.aggregator.RangeCounts(ctx, days)
	if err != nil {
		return nil, err
	}
	ads, err := s.ads.List(ctx, repositories.AdFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	out := make([]models.AdPerformance, 0, len(ads))
	for _, ad := range ads {
		i, c := imps[ad.ID], clks[ad.ID]
		out = append(out, models.AdPerformance{
			AdID:        ad.ID,
			ZoneID:      ad.ZoneID,
			Impressions: i,
			Clicks:      c,
			CTR:         models.CTR(c, i),
		})
	}
	return out, nil
}

// WindowStats covers every ad over the default selection window.
func (s *AnalyticsService) WindowStats(ctx context.Context) ([]models.AdWindowStats, error) {
	imps, clks, err := s.aggregator.RangeCounts(ctx, selection.DefaultWindowDays)
	if err != nil {
		return nil, err
	}
	ads, err := s.ads.List(ctx, repositories.AdFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]models.AdWindowStats, 0, len(ads))
	for _, ad := range ads {
		i, c := imps[ad.ID], clks[ad.ID]
		out = append(out, models.AdWindowStats{
			ID:          ad.ID,
			ZoneID:      ad.ZoneID,
			HTMLSnippet: ad.Snippet(snippetLength),
			Impressions: i,
			Clicks:      c,
			CTR:         models.CTRPercent(c, i),
		})
	}
	return out, nil
}

func (s *AnalyticsService) LifetimeStats(ctx context.Context) ([]models.AdLifetimeStats, error) {
	imps, err := s.events.CountAll(ctx, models.EventImpression)
	if err != nil {
		return nil, err
	}
	clks, err := s.events.CountAll(ctx, models.EventClick)
	if err != nil {
		return nil, err
	}
	ads, err := s.ads.List(ctx, repositories.AdFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]models.AdLifetimeStats, 0, len(ads))
	for _, ad := range ads {
		i, c := imps[ad.ID], clks[ad.ID]
		out = append(out, models.AdLifetimeStats{
			AdID:        ad.ID,
			ZoneID:      ad.ZoneID,
			Impressions: i,
			Clicks:      c,
			CTR:         models.CTRPercent(c, i),
			URL:         ad.URL,
		})
	}
	return out, nil
}
