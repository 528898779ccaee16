package game

import (
	"math/rand/v2"
	"sync"
)

// Rand is the random source games draw from.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// LockedRand is a Rand safe for concurrent use.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a seeded, concurrency-safe Rand.
func NewRand(seed uint64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Chance reports true with the given percentage probability.
func Chance(rng Rand, percent float64) bool {
	return rng.Float64()*100 < percent
}
