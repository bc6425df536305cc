package selection

import (
	"errors"
	"math"
	"testing"

	"github.com/adzone/adserver/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateWeights(t *testing.T) {
	tests := []struct {
		name        string
		weight      int
		impressions int64
		clicks      int64
		expected    float64
	}{
		{"new ad gets exploration bonus", 1, 0, 0, 1.5},
		{"new ad scales with base weight", 4, 0, 0, 6},
		{"ctr capped with exploration", 1, 10, 10, 4.5},
		{"ctr capped with exploration base 2", 2, 10, 10, 9},
		{"ctr exactly at cap", 1, 200, 40, 3},
		{"ctr above cap", 1, 200, 100, 3},
		{"zero ctr established ad", 3, 500, 0, 3},
		{"five percent ctr established ad", 1, 1000, 50, 1.5},
		{"threshold boundary gets no bonus", 1, 100, 0, 1},
		{"just below threshold gets bonus", 1, 99, 0, 1.5},
		{"zero base weight", 0, 50, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ads := []models.Ad{{ID: 1, Weight: tt.weight}}
			weights := CalculateWeights(DefaultConfig(), ads,
				map[int64]int64{1: tt.impressions},
				map[int64]int64{1: tt.clicks},
			)
			if len(weights) != 1 {
				t.Fatalf("expected 1 weight, got %d", len(weights))
			}
			if !almostEqual(weights[0], tt.expected) {
				t.Errorf("weight = %v, want %v", weights[0], tt.expected)
			}
		})
	}
}

func TestCalculateWeights_MissingCountsAreZero(t *testing.T) {
	ads := []models.Ad{{ID: 7, Weight: 2}}
	weights := CalculateWeights(DefaultConfig(), ads, nil, nil)
	if !almostEqual(weights[0], 3) {
		t.Errorf("weight = %v, want 3", weights[0])
	}
}

func TestCalculateWeights_PreservesOrder(t *testing.T) {
	ads := []models.Ad{
		{ID: 3, Weight: 1},
		{ID: 1, Weight: 2},
		{ID: 2, Weight: 3},
	}
	imps := map[int64]int64{1: 500, 2: 500, 3: 500}
	weights := CalculateWeights(DefaultConfig(), ads, imps, nil)

	expected := []float64{1, 2, 3}
	for i := range expected {
		if !almostEqual(weights[i], expected[i]) {
			t.Errorf("weights[%d] = %v, want %v", i, weights[i], expected[i])
		}
	}
}

func TestCalculateWeights_MonotonicInClicks(t *testing.T) {
	for _, impressions := range []int64{1, 10, 99, 100, 250, 5000} {
		prev := -1.0
		for clicks := int64(0); clicks <= impressions && clicks <= 300; clicks++ {
			ads := []models.Ad{{ID: 1, Weight: 5}}
			w := CalculateWeights(DefaultConfig(), ads,
				map[int64]int64{1: impressions},
				map[int64]int64{1: clicks},
			)[0]
			if w < prev {
				t.Fatalf("impressions=%d clicks=%d: weight %v dropped below %v", impressions, clicks, w, prev)
			}
			prev = w
		}
	}
}

func TestCalculateWeights_CustomConfig(t *testing.T) {
	cfg := Config{
		WindowDays:            3,
		CTRMultiplier:         5,
		MaxCTRBoost:           1,
		ExplorationThreshold:  10,
		ExplorationMultiplier: 2,
	}
	ads := []models.Ad{{ID: 1, Weight: 1}, {ID: 2, Weight: 1}}
	weights := CalculateWeights(cfg, ads,
		map[int64]int64{1: 5, 2: 100},
		map[int64]int64{1: 5, 2: 10},
	)
	// ad 1: ctr 1.0 → boost 1+min(5,1)=2, exploration ×2 → 4
	// ad 2: ctr 0.1 → boost 1+min(0.5,1)=1.5
	if !almostEqual(weights[0], 4) {
		t.Errorf("weights[0] = %v, want 4", weights[0])
	}
	if !almostEqual(weights[1], 1.5) {
		t.Errorf("weights[1] = %v, want 1.5", weights[1])
	}
}

func TestWeightCalculator_FailureIsolatedPerAd(t *testing.T) {
	ads := []models.Ad{
		{ID: 1, Weight: 2},
		{ID: 2, Weight: 7},
		{ID: 3, Weight: 2},
	}
	imps := map[int64]int64{1: 10, 2: 13, 3: 0}
	clks := map[int64]int64{1: 10, 2: 1}

	t.Run("integer division panic", func(t *testing.T) {
		calc := NewWeightCalculator(DefaultConfig(), nil)
		calc.ctr = func(clicks, impressions int64) (float64, error) {
			// divides by zero for the ad with 13 impressions
			return float64(clicks / (impressions - 13)), nil
		}
		weights := calc.Calculate(ads, imps, clks)

		if !almostEqual(weights[1], 7) {
			t.Errorf("failing ad weight = %v, want base weight 7", weights[1])
		}
		// ad 1: 10/(10-13) = -3 → boost 1+min(-30,2) = -29, ×1.5 → -43.5, ×2
		if !almostEqual(weights[0], -87) {
			t.Errorf("weights[0] = %v, want -87", weights[0])
		}
		// ad 3: 0/(0-13) = 0 → boost 1.5 → 3
		if !almostEqual(weights[2], 3) {
			t.Errorf("weights[2] = %v, want 3", weights[2])
		}
	})

	t.Run("returned error", func(t *testing.T) {
		calc := NewWeightCalculator(DefaultConfig(), nil)
		calc.ctr = func(clicks, impressions int64) (float64, error) {
			if impressions == 13 {
				return 0, errors.New("boom")
			}
			return clickThroughRate(clicks, impressions)
		}
		weights := calc.Calculate(ads, imps, clks)

		expected := []float64{9, 7, 3}
		for i := range expected {
			if !almostEqual(weights[i], expected[i]) {
				t.Errorf("weights[%d] = %v, want %v", i, weights[i], expected[i])
			}
		}
	})

	t.Run("non-finite result", func(t *testing.T) {
		calc := NewWeightCalculator(DefaultConfig(), nil)
		calc.ctr = func(clicks, impressions int64) (float64, error) {
			if impressions == 13 {
				return math.NaN(), nil
			}
			return clickThroughRate(clicks, impressions)
		}
		weights := calc.Calculate(ads, imps, clks)
		if !almostEqual(weights[1], 7) {
			t.Errorf("NaN ad weight = %v, want base weight 7", weights[1])
		}
		if !almostEqual(weights[0], 9) {
			t.Errorf("weights[0] = %v, want 9", weights[0])
		}
	})
}

func TestClickThroughRate_NegativeCounts(t *testing.T) {
	if _, err := clickThroughRate(-1, 10); !errors.Is(err, errNegativeCount) {
		t.Errorf("expected errNegativeCount, got %v", err)
	}
	if _, err := clickThroughRate(1, -10); !errors.Is(err, errNegativeCount) {
		t.Errorf("expected errNegativeCount, got %v", err)
	}
}
