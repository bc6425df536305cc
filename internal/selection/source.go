package selection

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Clock supplies the current time for window cutoffs.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// RandomSource yields uniform draws in [0, 1).
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultSource is backed by the runtime-seeded, concurrency-safe generator.
func DefaultSource() RandomSource { return globalSource{} }

// SeededSource is a deterministic source safe for use from several goroutines.
type SeededSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}
