package selection

// DefaultWindowDays is the lookback used when scoring ads for a render.
const DefaultWindowDays = 7

// Config carries every tunable of the weighting heuristic. It is passed
// explicitly so the calculator stays a pure function of its inputs.
type Config struct {
	WindowDays int

	// CTRMultiplier scales the observed CTR before the cap is applied:
	// boost = 1 + min(ctr*CTRMultiplier, MaxCTRBoost).
	CTRMultiplier float64
	MaxCTRBoost   float64

	// Ads with fewer impressions than ExplorationThreshold inside the window
	// get their boost multiplied by ExplorationMultiplier.
	ExplorationThreshold  int64
	ExplorationMultiplier float64
}

const (
	defaultCTRMultiplier         = 10.0
	defaultMaxCTRBoost           = 2.0
	defaultExplorationThreshold  = 100
	defaultExplorationMultiplier = 1.5
)

func DefaultConfig() Config {
	return Config{
		WindowDays:            DefaultWindowDays,
		CTRMultiplier:         defaultCTRMultiplier,
		MaxCTRBoost:           defaultMaxCTRBoost,
		ExplorationThreshold:  defaultExplorationThreshold,
		ExplorationMultiplier: defaultExplorationMultiplier,
	}
}

// withDefaults fills zero fields so a partially populated Config still behaves.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WindowDays <= 0 {
		c.WindowDays = d.WindowDays
	}
	if c.CTRMultiplier == 0 {
		c.CTRMultiplier = d.CTRMultiplier
	}
	if c.MaxCTRBoost == 0 {
		c.MaxCTRBoost = d.MaxCTRBoost
	}
	if c.ExplorationThreshold == 0 {
		c.ExplorationThreshold = d.ExplorationThreshold
	}
	if c.ExplorationMultiplier == 0 {
		c.ExplorationMultiplier = d.ExplorationMultiplier
	}
	return c
}
