package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/adzone/adserver/internal/models"
)

var ErrNotFound = errors.New("not found")

type ZoneStore interface {
	Create(ctx context.Context, z *models.Zone) error
	GetByID(ctx context.Context, id int64) (*models.Zone, error)
	List(ctx context.Context) ([]models.Zone, error)
	Update(ctx context.Context, z *models.Zone) error
	Delete(ctx context.Context, id int64) error
}

type AdFilter struct {
	ZoneID     *int64
	ActiveOnly bool
}

type AdStore interface {
	Create(ctx context.Context, a *models.Ad) error
	GetByID(ctx context.Context, id int64) (*models.Ad, error)
	List(ctx context.Context, f AdFilter) ([]models.Ad, error)
	ListActiveByZone(ctx context.Context, zoneID int64) ([]models.Ad, error)
	CountByZone(ctx context.Context, zoneID int64) (int, error)
	Update(ctx context.Context, a *models.Ad) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// EventStore holds the append-only impression and click tables.
type EventStore interface {
	Record(ctx context.Context, kind models.EventKind, adID int64, country string, at time.Time) error
	CountSince(ctx context.Context, kind models.EventKind, cutoff time.Time) (map[int64]int64, error)
	CountAll(ctx context.Context, kind models.EventKind) (map[int64]int64, error)
}

// Stores bundles one backend's implementations.
type Stores struct {
	Zones  ZoneStore
	Ads    AdStore
	Events EventStore
	Close  func()
}
