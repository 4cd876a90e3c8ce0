package infrastructure

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource is a seeded generator safe for concurrent use
type RandomSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource creates a generator from seed. A zero seed is replaced by
// the current time, so only a non-zero seed gives a reproducible sequence.
func NewRandomSource(seed uint64) *RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN returns a uniform integer in [0, n)
func (r *RandomSource) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

// Float64 returns a uniform float in [0.0, 1.0)
func (r *RandomSource) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

// Shuffle pseudo-randomizes the order of n elements
func (r *RandomSource) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}
