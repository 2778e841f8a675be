// Package sampling implements the stochastic selection primitives used by
// the scheduler and by selection-dependent cell types: roulette-wheel
// (weight-proportional) selection and uniform sampling with and without
// replacement. Every function takes an explicit random source so that runs
// are reproducible from a single seed.
package sampling

import (
	"errors"
	"math/rand"
)

var (
	ErrNoItems        = errors.New("no items to sample from")
	ErrInvalidCount   = errors.New("invalid sample count")
	ErrWeightMismatch = errors.New("weights do not match items")
	ErrZeroWeight     = errors.New("total weight must be positive")
)

// RouletteSelect picks k indices in [0, len(weights)) with probability
// proportional to their weights. Weights must be non-negative and sum to a
// positive total. Selection is with replacement.
func RouletteSelect(rng *rand.Rand, weights []float64, k int) ([]int, error) {
	if len(weights) == 0 {
		return nil, ErrNoItems
	}
	if k < 1 {
		return nil, ErrInvalidCount
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return nil, ErrZeroWeight
	}

	winners := make([]int, 0, k)
	for len(winners) < k {
		r := rng.Float64() * total
		acc := 0.0
		picked := len(weights) - 1
		for i, w := range weights {
			acc += w
			if r < acc {
				picked = i
				break
			}
		}
		winners = append(winners, picked)
	}
	return winners, nil
}

// RouletteSelectOne is the common single-winner case.
func RouletteSelectOne(rng *rand.Rand, weights []float64) (int, error) {
	winners, err := RouletteSelect(rng, weights, 1)
	if err != nil {
		return 0, err
	}
	return winners[0], nil
}

// WithReplacement draws k values uniformly from [0, n) with replacement.
func WithReplacement(rng *rand.Rand, n, k int) ([]int, error) {
	if n < 1 {
		return nil, ErrNoItems
	}
	if k < 1 {
		return nil, ErrInvalidCount
	}

	samples := make([]int, k)
	for i := range samples {
		samples[i] = rng.Intn(n)
	}
	return samples, nil
}

// WithoutReplacement draws k distinct values uniformly from [0, n).
func WithoutReplacement(rng *rand.Rand, n, k int) ([]int, error) {
	if n < 1 {
		return nil, ErrNoItems
	}
	if k < 0 || k > n {
		return nil, ErrInvalidCount
	}

	return rng.Perm(n)[:k], nil
}
