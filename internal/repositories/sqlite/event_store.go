package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adzone/adserver/internal/models"
)

type EventStore struct {
	db *DB
}

func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Record(ctx context.Context, kind models.EventKind, adID int64, country string, at time.Time) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown event kind %q", kind)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+kind.Table()+` (ad_id, country, created_at) VALUES (?, NULLIF(?, ''), ?)`,
		adID, country, toUnix(at))
	return err
}

func (s *EventStore) CountSince(ctx context.Context, kind models.EventKind, cutoff time.Time) (map[int64]int64, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ad_id, COUNT(id) FROM `+kind.Table()+` WHERE created_at >= ? GROUP BY ad_id`,
		toUnix(cutoff))
	if err != nil {
		return nil, err
	}
	return collectCounts(rows)
}

func (s *EventStore) CountAll(ctx context.Context, kind models.EventKind) (map[int64]int64, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT ad_id, COUNT(id) FROM `+kind.Table()+` GROUP BY ad_id`)
	if err != nil {
		return nil, err
	}
	return collectCounts(rows)
}

func collectCounts(rows *sql.Rows) (map[int64]int64, error) {
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
