package models

import "time"

// EventKind identifies one of the append-only tracking tables.
type EventKind string

const (
	EventImpression EventKind = "impression"
	EventClick      EventKind = "click"
)

func (k EventKind) Valid() bool {
	return k == EventImpression || k == EventClick
}

// Table returns the storage table backing the kind.
func (k EventKind) Table() string {
	switch k {
	case EventImpression:
		return "impressions"
	case EventClick:
		return "clicks"
	}
	return ""
}

type Impression struct {
	ID        int64     `json:"id"`
	AdID      int64     `json:"ad_id"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Click struct {
	ID        int64     `json:"id"`
	AdID      int64     `json:"ad_id"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdPerformance is the aggregate view of one ad over a window.
type AdPerformance struct {
	AdID        int64   `json:"ad_id"`
	ZoneID      int64   `json:"zone_id"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"`
}

// CTR returns clicks/impressions, or 0 when there are no impressions.
func CTR(clicks, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	return float64(clicks) / float64(impressions)
}
