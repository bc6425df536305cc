package repositories

import (
	"context"
	"errors"

	"github.com/adzone/adserver/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ZoneRepo struct {
	pool *pgxpool.Pool
}

func NewZoneRepo(pool *pgxpool.Pool) *ZoneRepo {
	return &ZoneRepo{pool: pool}
}

func (r *ZoneRepo) Create(ctx context.Context, z *models.Zone) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO zones (name, width, height)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, z.Name, z.Width, z.Height).Scan(&z.ID, &z.CreatedAt)
}

func (r *ZoneRepo) GetByID(ctx context.Context, id int64) (*models.Zone, error) {
	var z models.Zone
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, width, height, created_at FROM zones WHERE id = $1
	`, id).Scan(&z.ID, &z.Name, &z.Width, &z.Height, &z.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *ZoneRepo) List(ctx context.Context) ([]models.Zone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, width, height, created_at FROM zones ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		var z models.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Width, &z.Height, &z.CreatedAt); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (r *ZoneRepo) Update(ctx context.Context, z *models.Zone) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE zones SET name = $1, width = $2, height = $3 WHERE id = $4
	`, z.Name, z.Width, z.Height, z.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the zone; ads and their events go with it via ON DELETE CASCADE.
func (r *ZoneRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM zones WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
