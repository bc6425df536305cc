package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adzone/adserver/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdRepo struct {
	pool *pgxpool.Pool
}

func NewAdRepo(pool *pgxpool.Pool) *AdRepo {
	return &AdRepo{pool: pool}
}

const adColumns = `id, zone_id, html, url, weight, is_active, created_at`

func scanAd(row pgx.Row) (models.Ad, error) {
	var a models.Ad
	err := row.Scan(&a.ID, &a.ZoneID, &a.HTML, &a.URL, &a.Weight, &a.IsActive, &a.CreatedAt)
	return a, err
}

func (r *AdRepo) Create(ctx context.Context, a *models.Ad) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO ads (zone_id, html, url, weight, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, a.ZoneID, a.HTML, a.URL, a.Weight, a.IsActive).Scan(&a.ID, &a.CreatedAt)
}

func (r *AdRepo) GetByID(ctx context.Context, id int64) (*models.Ad, error) {
	a, err := scanAd(r.pool.QueryRow(ctx, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdRepo) List(ctx context.Context, f AdFilter) ([]models.Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads`
	args := []any{}
	where := []string{}

	if f.ZoneID != nil {
		args = append(args, *f.ZoneID)
		where = append(where, fmt.Sprintf("zone_id = $%d", len(args)))
	}
	if f.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ads := []models.Ad{}
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, a)
	}
	return ads, rows.Err()
}

func (r *AdRepo) ListActiveByZone(ctx context.Context, zoneID int64) ([]models.Ad, error) {
	return r.List(ctx, AdFilter{ZoneID: &zoneID, ActiveOnly: true})
}

func (r *AdRepo) CountByZone(ctx context.Context, zoneID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ads WHERE zone_id = $1`, zoneID).Scan(&n)
	return n, err
}

func (r *AdRepo) Update(ctx context.Context, a *models.Ad) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ads SET zone_id = $1, html = $2, url = $3, weight = $4
		WHERE id = $5
	`, a.ZoneID, a.HTML, a.URL, a.Weight, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AdRepo) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE ads SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AdRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
