package services

import (
	"errors"
	"fmt"
)

var (
	ErrZoneNotFound = errors.New("zone not found")
	ErrAdNotFound   = errors.New("ad not found")
	ErrInvalidZone  = errors.New("invalid zone_id")
	ErrInvalidDays  = errors.New("days must be between 1 and 90")
)

// NoEligibleAdsError is returned by Render when a zone exists but nothing in
// it can be served. TotalAds counts inactive ads so callers can tell an empty
// zone from a paused one.
type NoEligibleAdsError struct {
	ZoneID   int64
	ZoneName string
	TotalAds int
}

func (e *NoEligibleAdsError) Error() string {
	if e.TotalAds > 0 {
		return fmt.Sprintf("Zone %d (%s) has %d ad(s) but none are active. Activate ads via /admin/ads",
			e.ZoneID, e.ZoneName, e.TotalAds)
	}
	return fmt.Sprintf("Zone %d (%s) has no ads. Create ads via /ads/ or /admin/ads", e.ZoneID, e.ZoneName)
}
