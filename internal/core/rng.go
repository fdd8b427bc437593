package core

import (
	"math/rand/v2"
	"time"
)

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// NewUnseededRNG creates an RNG seeded from the wall clock.
func NewUnseededRNG() *RNG {
	return NewRNG(time.Now().UnixNano())
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// IntN returns a value in [0, n). Non-positive n yields 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Jitter returns a uniform value in [-amp, amp].
func (r *RNG) Jitter(amp float64) float64 {
	if amp == 0 {
		return 0
	}
	return (2*r.r.Float64() - 1) * amp
}

// Range returns a uniform value in [lo, hi).
func (r *RNG) Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.r.Float64()*(hi-lo)
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
