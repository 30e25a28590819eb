// Package randstream provides the single seeded pseudo-random source that every
// generator in a run draws from. A Stream is not safe for concurrent use.
package randstream

import (
	"fmt"
	"math"
	"math/rand/v2"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
)

// Stream is an explicitly threaded random source. Two streams built from the
// same seed yield the same draws as long as they are consumed in the same order.
type Stream struct {
	seed int64
	rng  *rand.Rand
}

// New returns a stream seeded with seed.
func New(seed int64) *Stream {
	return &Stream{
		seed: seed,
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the stream was created with.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Float64 returns a uniform draw in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// Uniform returns a uniform draw in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// Normal returns a Gaussian draw with mean mu and standard deviation sigma.
func (s *Stream) Normal(mu, sigma float64) float64 {
	return mu + sigma*s.rng.NormFloat64()
}

// Normals returns n independent Gaussian draws.
func (s *Stream) Normals(n int, mu, sigma float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Normal(mu, sigma)
	}
	return out
}

// IntRange returns a uniform integer in [lo, hi). hi must be greater than lo.
func (s *Stream) IntRange(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo)
}

// Choice returns an index drawn according to weights, which must sum to 1.
func (s *Stream) Choice(weights []float64) int {
	u := s.rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if u < acc {
			return i
		}
	}
	return len(weights) - 1
}

// Bernoulli returns 1 with probability p and 0 otherwise. A probability
// outside [0, 1] (or NaN) is rejected before any draw is consumed.
func (s *Stream) Bernoulli(p float64) (int, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("bernoulli probability %v outside [0,1]", p)
	}
	if s.rng.Float64() < p {
		return 1, nil
	}
	return 0, nil
}

// SampleWithoutReplacement returns n distinct indices from [0, population)
// using a partial Fisher-Yates shuffle.
func (s *Stream) SampleWithoutReplacement(population, n int) ([]int, error) {
	if n < 0 || n > population {
		return nil, appErrors.NewSamplingError(n, population)
	}
	idx := make([]int, population)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + s.rng.IntN(population-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:n], nil
}
