package services

import (
	"context"
	"errors"

	"github.com/adzone/adserver/internal/events"
	"github.com/adzone/adserver/internal/models"
	"github.com/adzone/adserver/internal/repositories"
	"go.uber.org/zap"
)

type AdService struct {
	ads       repositories.AdStore
	zones     repositories.ZoneStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewAdService(ads repositories.AdStore, zones repositories.ZoneStore, publisher events.Publisher, log *zap.Logger) *AdService {
	return &AdService{ads: ads, zones: zones, publisher: publisher, log: log}
}

func (s *AdService) checkZone(ctx context.Context, zoneID int64) error {
	_, err := s.zones.GetByID(ctx, zoneID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidZone
	}
	return err
}

// Create stores a new ad with the weight it was given. A weight of 0 is kept
// and takes the ad out of rotation; callers apply DefaultAdWeight themselves.
func (s *AdService) Create(ctx context.Context, a *models.Ad) error {
	if err := s.checkZone(ctx, a.ZoneID); err != nil {
		return err
	}
	if err := s.ads.Create(ctx, a); err != nil {
		return err
	}
	s.log.Info("ad created", zap.Int64("ad_id", a.ID), zap.Int64("zone_id", a.ZoneID))
	return nil
}

func (s *AdService) Get(ctx context.Context, id int64) (*models.Ad, error) {
	a, err := s.ads.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrAdNotFound
	}
	return a, err
}

func (s *AdService) List(ctx context.Context, f repositories.AdFilter) ([]models.Ad, error) {
	return s.ads.List(ctx, f)
}

func (s *AdService) Update(ctx context.Context, id int64, upd models.Ad) (*models.Ad, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.ZoneID != a.ZoneID {
		if err := s.checkZone(ctx, upd.ZoneID); err != nil {
			return nil, err
		}
	}
	a.HTML = upd.HTML
	a.URL = upd.URL
	a.Weight = upd.Weight
	a.ZoneID = upd.ZoneID
	if err := s.ads.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AdService) Delete(ctx context.Context, id int64) error {
	err := s.ads.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrAdNotFound
	}
	if err != nil {
		return err
	}
	s.log.Info("ad deleted", zap.Int64("ad_id", id))
	return nil
}

func (s *AdService) Enable(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, true)
}

func (s *AdService) Disable(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, false)
}

func (s *AdService) setActive(ctx context.Context, id int64, active bool) error {
	err := s.ads.SetActive(ctx, id, active)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrAdNotFound
	}
	if err != nil {
		return err
	}

	s.log.Info("ad status changed", zap.Int64("ad_id", id), zap.Bool("active", active))
	_ = s.publisher.Publish(ctx, events.StreamAdmin, events.New(events.EventAdStatusChanged, map[string]any{
		"ad_id":     id,
		"is_active": active,
	}))
	return nil
}

// SubmitRental stores an ad submitted through the public rental form and
// notifies admins.
func (s *AdService) SubmitRental(ctx context.Context, a *models.Ad) error {
	a.IsActive = true
	if err := s.Create(ctx, a); err != nil {
		return err
	}
	_ = s.publisher.Publish(ctx, events.StreamAdmin, events.New(events.EventAdRentalSubmitted, map[string]any{
		"ad_id":   a.ID,
		"zone_id": a.ZoneID,
		"url":     a.URL,
	}))
	return nil
}
