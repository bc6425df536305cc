package repositories

import "github.com/jackc/pgx/v5/pgxpool"

// NewPostgresStores wires the pgx-backed stores onto one pool.
func NewPostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Zones:  NewZoneRepo(pool),
		Ads:    NewAdRepo(pool),
		Events: NewEventRepo(pool),
		Close:  pool.Close,
	}
}
