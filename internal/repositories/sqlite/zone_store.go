package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adzone/adserver/internal/models"
	"github.com/adzone/adserver/internal/repositories"
)

type ZoneStore struct {
	db *DB
}

func NewZoneStore(db *DB) *ZoneStore {
	return &ZoneStore{db: db}
}

func (s *ZoneStore) Create(ctx context.Context, z *models.Zone) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO zones (name, width, height, created_at) VALUES (?, ?, ?, ?)`,
		z.Name, z.Width, z.Height, toUnix(now))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	z.ID = id
	z.CreatedAt = now
	return nil
}

func (s *ZoneStore) GetByID(ctx context.Context, id int64) (*models.Zone, error) {
	var z models.Zone
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, width, height, created_at FROM zones WHERE id = ?`, id,
	).Scan(&z.ID, &z.Name, &z.Width, &z.Height, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	z.CreatedAt = fromUnix(created)
	return &z, nil
}

func (s *ZoneStore) List(ctx context.Context) ([]models.Zone, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, width, height, created_at FROM zones ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		var z models.Zone
		var created int64
		if err := rows.Scan(&z.ID, &z.Name, &z.Width, &z.Height, &created); err != nil {
			return nil, err
		}
		z.CreatedAt = fromUnix(created)
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (s *ZoneStore) Update(ctx context.Context, z *models.Zone) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE zones SET name = ?, width = ?, height = ? WHERE id = ?`,
		z.Name, z.Width, z.Height, z.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes the zone with its ads and their events in one transaction.
func (s *ZoneStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM impressions WHERE ad_id IN (SELECT id FROM ads WHERE zone_id = ?)`,
		`DELETE FROM clicks WHERE ad_id IN (SELECT id FROM ads WHERE zone_id = ?)`,
		`DELETE FROM ads WHERE zone_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM zones WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
