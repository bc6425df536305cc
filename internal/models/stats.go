package models

import "math"

// AdWindowStats is the compact per-ad view served by /api/stats.json.
type AdWindowStats struct {
	ID          int64   `json:"id"`
	ZoneID      int64   `json:"zone_id"`
	HTMLSnippet string  `json:"html_snippet"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"` // percent
}

// AdLifetimeStats is the all-time per-ad view served by /stats.json.
type AdLifetimeStats struct {
	AdID        int64   `json:"ad_id"`
	ZoneID      int64   `json:"zone_id"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"` // percent
	URL         string  `json:"url"`
}

// CTRPercent returns the click-through rate as a percentage rounded to two places.
func CTRPercent(clicks, impressions int64) float64 {
	return math.Round(CTR(clicks, impressions)*100*100) / 100
}
