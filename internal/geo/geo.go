// Package geo resolves client IPs to ISO country codes for event tagging.
package geo

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/maxminddb-golang"
)

// Locator returns the ISO 3166 country code for ip, or "" when unknown.
type Locator interface {
	Country(ip string) string
	Close() error
}

// NopLocator tags nothing. Used when no GeoIP database is configured.
type NopLocator struct{}

func (NopLocator) Country(string) string { return "" }
func (NopLocator) Close() error          { return nil }

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// MaxMindLocator reads a GeoLite2 Country or City database.
type MaxMindLocator struct {
	reader *maxminddb.Reader
}

func NewMaxMindLocator(path string) (*MaxMindLocator, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &MaxMindLocator{reader: reader}, nil
}

func (m *MaxMindLocator) Country(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return ""
	}
	var rec countryRecord
	if err := m.reader.Lookup(parsed, &rec); err != nil {
		return ""
	}
	return rec.Country.ISOCode
}

func (m *MaxMindLocator) Close() error {
	if m.reader != nil {
		return m.reader.Close()
	}
	return nil
}

// Open returns a MaxMind locator for path, or a NopLocator when path is empty.
func Open(path string) (Locator, error) {
	if path == "" {
		return NopLocator{}, nil
	}
	return NewMaxMindLocator(path)
}
