// Package sqlite implements the repository stores on SQLite for local
// development and tests. libsql:// and wss:// URLs are served by the Turso driver.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/adzone/adserver/internal/repositories"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// DB wraps the shared handle used by every store in this package.
type DB struct {
	*sql.DB
}

// IsSQLiteURL reports whether url should be opened with this package.
func IsSQLiteURL(url string) bool {
	for _, prefix := range []string{"file:", "sqlite:", "libsql://", "wss://", ":memory:"} {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return strings.HasSuffix(url, ".db")
}

func Open(url string) (*DB, error) {
	driverName := "sqlite"
	if strings.Contains(url, "libsql://") || strings.Contains(url, "wss://") {
		driverName = "libsql"
	}
	url = strings.TrimPrefix(url, "sqlite:///")
	url = strings.TrimPrefix(url, "sqlite://")
	if driverName == "sqlite" {
		url = withForeignKeys(url)
	}

	db, err := sql.Open(driverName, url)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	// PRAGMA foreign_keys is per connection, so a single connection keeps the
	// libsql setting from migrate in force. It also keeps in-memory databases
	// shared and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{DB: db}, nil
}

// withForeignKeys makes modernc enable foreign keys on every new connection.
func withForeignKeys(url string) string {
	if strings.Contains(url, "foreign_keys") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)"
}

func migrate(db *sql.DB) error {
	query := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS zones (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		zone_id INTEGER NOT NULL,
		html TEXT NOT NULL,
		url TEXT NOT NULL,
		weight INTEGER NOT NULL DEFAULT 1,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		FOREIGN KEY(zone_id) REFERENCES zones(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_ads_zone_active ON ads(zone_id, is_active);

	CREATE TABLE IF NOT EXISTS impressions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ad_id INTEGER NOT NULL,
		country TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY(ad_id) REFERENCES ads(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_impressions_created ON impressions(created_at, ad_id);

	CREATE TABLE IF NOT EXISTS clicks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ad_id INTEGER NOT NULL,
		country TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY(ad_id) REFERENCES ads(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_clicks_created ON clicks(created_at, ad_id);
	`
	_, err := db.Exec(query)
	return err
}

// Timestamps are stored as unix nanoseconds so range comparisons stay numeric.
func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// NewStores opens url and wires every store onto the handle.
func NewStores(url string) (repositories.Stores, error) {
	db, err := Open(url)
	if err != nil {
		return repositories.Stores{}, err
	}
	return repositories.Stores{
		Zones:  NewZoneStore(db),
		Ads:    NewAdStore(db),
		Events: NewEventStore(db),
		Close:  func() { db.Close() },
	}, nil
}
