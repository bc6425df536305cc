package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/adzone/adserver/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Record(ctx context.Context, kind models.EventKind, adID int64, country string, at time.Time) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown event kind %q", kind)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO `+kind.Table()+` (ad_id, country, created_at) VALUES ($1, NULLIF($2, ''), $3)`,
		adID, country, at.UTC(),
	)
	return err
}

func (r *EventRepo) CountSince(ctx context.Context, kind models.EventKind, cutoff time.Time) (map[int64]int64, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT ad_id, COUNT(id) FROM `+kind.Table()+` WHERE created_at >= $1 GROUP BY ad_id`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, err
	}
	return collectCounts(rows)
}

func (r *EventRepo) CountAll(ctx context.Context, kind models.EventKind) (map[int64]int64, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	rows, err := r.pool.Query(ctx, `SELECT ad_id, COUNT(id) FROM `+kind.Table()+` GROUP BY ad_id`)
	if err != nil {
		return nil, err
	}
	return collectCounts(rows)
}

func collectCounts(rows pgx.Rows) (map[int64]int64, error) {
	defer rows.Close()

	counts := map[int64]int64{}
	for rows.Next() {
		var adID, n int64
		if err := rows.Scan(&adID, &n); err != nil {
			return nil, err
		}
		counts[adID] = n
	}
	return counts, rows.Err()
}
