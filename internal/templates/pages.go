package templates

import (
	"time"

	"github.com/adzone/adserver/internal/models"
)

// Page carries the fields the layout reads.
type Page struct {
	Year int
	Host string
}

func NewPage(host string) Page {
	return Page{Year: time.Now().Year(), Host: host}
}

type BlogPost struct {
	Slug  string
	Title string
}

type BlogIndexPage struct {
	Page
	Posts []BlogPost
}

type RentPage struct {
	Page
	Zones   []models.Zone
	Success bool
}

type AnalyticsPage struct {
	Page
	Days int
	Rows []models.AdPerformance
}

type ZonesPage struct {
	Page
	Zones []models.Zone
}

type AdsPage struct {
	Page
	Zones      []models.Zone
	Ads        []models.Ad
	ZoneFilter int64
}
