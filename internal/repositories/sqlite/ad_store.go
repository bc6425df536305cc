package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/adzone/adserver/internal/models"
	"github.com/adzone/adserver/internal/repositories"
)

type AdStore struct {
	db *DB
}

func NewAdStore(db *DB) *AdStore {
	return &AdStore{db: db}
}

const adColumns = `id, zone_id, html, url, weight, is_active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAd(row rowScanner) (models.Ad, error) {
	var a models.Ad
	var created int64
	err := row.Scan(&a.ID, &a.ZoneID, &a.HTML, &a.URL, &a.Weight, &a.IsActive, &created)
	a.CreatedAt = fromUnix(created)
	return a, err
}

func (s *AdStore) Create(ctx context.Context, a *models.Ad) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO ads (zone_id, html, url, weight, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ZoneID, a.HTML, a.URL, a.Weight, a.IsActive, toUnix(now))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	a.CreatedAt = now
	return nil
}

func (s *AdStore) GetByID(ctx context.Context, id int64) (*models.Ad, error) {
	a, err := scanAd(s.db.QueryRowContext(ctx, `SELECT `+adColumns+` FROM ads WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AdStore) List(ctx context.Context, f repositories.AdFilter) ([]models.Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads`
	args := []any{}
	where := []string{}

	if f.ZoneID != nil {
		where = append(where, "zone_id = ?")
		args = append(args, *f.ZoneID)
	}
	if f.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *AdStore) ListActiveByZone(ctx context.Context, zoneID int64) ([]models.Ad, error) {
	return s.List(ctx, repositories.AdFilter{ZoneID: &zoneID, ActiveOnly: true})
}

func (s *AdStore) CountByZone(ctx context.Context, zoneID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ads WHERE zone_id = ?`, zoneID).Scan(&n)
	return n, err
}

func (s *AdStore) Update(ctx context.Context, a *models.Ad) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ads SET zone_id = ?, html = ?, url = ?, weight = ? WHERE id = ?`,
		a.ZoneID, a.HTML, a.URL, a.Weight, a.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *AdStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE ads SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *AdStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM impressions WHERE ad_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM clicks WHERE ad_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM ads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}
