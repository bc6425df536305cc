package selection

import "errors"

var (
	ErrNoAds          = errors.New("selection: no ads to choose from")
	ErrNoItems        = errors.New("selection: weighted choice over empty item list")
	ErrWeightMismatch = errors.New("selection: items and weights differ in length")
	ErrInvalidWindow  = errors.New("selection: window must be a positive number of days")
)
