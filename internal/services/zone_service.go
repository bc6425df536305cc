package services

import (
	"context"
	"errors"

	"github.com/adzone/adserver/internal/events"
	"github.com/adzone/adserver/internal/models"
	"github.com/adzone/adserver/internal/repositories"
	"go.uber.org/zap"
)

type ZoneService struct {
	zones     repositories.ZoneStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewZoneService(zones repositories.ZoneStore, publisher events.Publisher, log *zap.Logger) *ZoneService {
	return &ZoneService{zones: zones, publisher: publisher, log: log}
}

func (s *ZoneService) Create(ctx context.Context, z *models.Zone) error {
	if err := s.zones.Create(ctx, z); err != nil {
		return err
	}
	s.log.Info("zone created", zap.Int64("zone_id", z.ID), zap.String("name", z.Name))
	s.publish(ctx, "created", z.ID)
	return nil
}

func (s *ZoneService) Get(ctx context.Context, id int64) (*models.Zone, error) {
	z, err := s.zones.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrZoneNotFound
	}
	return z, err
}

func (s *ZoneService) List(ctx context.Context) ([]models.Zone, error) {
	return s.zones.List(ctx)
}

// Update overwrites name and dimensions of an existing zone.
func (s *ZoneService) Update(ctx context.Context, id int64, upd models.Zone) (*models.Zone, error) {
	z, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	z.Name = upd.Name
	z.Width = upd.Width
	z.Height = upd.Height
	if err := s.zones.Update(ctx, z); err != nil {
		return nil, err
	}
	s.publish(ctx, "updated", z.ID)
	return z, nil
}

// Delete removes the zone and, through the store, its ads and their events.
func (s *ZoneService) Delete(ctx context.Context, id int64) error {
	err := s.zones.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrZoneNotFound
	}
	if err != nil {
		return err
	}
	s.log.Info("zone deleted", zap.Int64("zone_id", id))
	s.publish(ctx, "deleted", id)
	return nil
}

func (s *ZoneService) publish(ctx context.Context, action string, id int64) {
	_ = s.publisher.Publish(ctx, events.StreamAdmin, events.New(events.EventZoneChanged, map[string]any{
		"zone_id": id,
		"action":  action,
	}))
}
