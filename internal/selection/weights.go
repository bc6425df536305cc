package selection

import (
	"errors"
	"fmt"
	"math"

	"github.com/adzone/adserver/internal/models"
	"go.uber.org/zap"
)

var (
	errNegativeCount = errors.New("negative event count")
	errNonFinite     = errors.New("non-finite weight")
)

// ctrFunc computes a click-through rate from raw counts.
type ctrFunc func(clicks, impressions int64) (float64, error)

func clickThroughRate(clicks, impressions int64) (float64, error) {
	if clicks < 0 || impressions < 0 {
		return 0, errNegativeCount
	}
	if impressions == 0 {
		return 0, nil
	}
	return float64(clicks) / float64(impressions), nil
}

// WeightCalculator turns windowed counts into selection weights, blending the
// ad's base weight with a capped CTR boost and an exploration bonus.
type WeightCalculator struct {
	cfg Config
	ctr ctrFunc
	log *zap.Logger
}

func NewWeightCalculator(cfg Config, log *zap.Logger) *WeightCalculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &WeightCalculator{cfg: cfg.withDefaults(), ctr: clickThroughRate, log: log}
}

// Calculate returns one weight per ad, in input order. An ad whose weight
// cannot be computed falls back to its base weight without affecting the rest.
func (c *WeightCalculator) Calculate(ads []models.Ad, impressions, clicks map[int64]int64) []float64 {
	weights := make([]float64, len(ads))
	for i, ad := range ads {
		w, err := c.adWeight(ad, impressions[ad.ID], clicks[ad.ID])
		if err != nil {
			c.log.Debug("weight calculation failed, using base weight",
				zap.Int64("ad_id", ad.ID),
				zap.Int("base_weight", ad.Weight),
				zap.Error(err),
			)
			w = float64(ad.Weight)
		}
		weights[i] = w
	}
	return weights
}

func (c *WeightCalculator) adWeight(ad models.Ad, impressions, clicks int64) (weight float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ad %d: %v", ad.ID, r)
		}
	}()

	ctr, err := c.ctr(clicks, impressions)
	if err != nil {
		return 0, fmt.Errorf("ad %d: %w", ad.ID, err)
	}

	boost := 1.0 + math.Min(ctr*c.cfg.CTRMultiplier, c.cfg.MaxCTRBoost)
	if impressions < c.cfg.ExplorationThreshold {
		boost *= c.cfg.ExplorationMultiplier
	}

	weight = float64(ad.Weight) * boost
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return 0, fmt.Errorf("ad %d: %w", ad.ID, errNonFinite)
	}
	return weight, nil
}

// CalculateWeights is the stateless form of WeightCalculator.Calculate.
func CalculateWeights(cfg Config, ads []models.Ad, impressions, clicks map[int64]int64) []float64 {
	return NewWeightCalculator(cfg, nil).Calculate(ads, impressions, clicks)
}
