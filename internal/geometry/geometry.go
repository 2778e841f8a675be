// Package geometry provides distance calculations between coordinate tuples
// in the unit hypercube, with optional periodic (toroidal) boundaries.
package geometry

import (
	"errors"
	"math"
)

var ErrDimensionMismatch = errors.New("coordinate dimensions do not match")

// MinkowskiDistanceP computes the Minkowski distance of the given order
// raised to the pth power (i.e. without the final root). With periodic
// boundaries, the per-dimension component is min(|d|, 1-|d|), wrapping at
// coordinate value 1.0.
func MinkowskiDistanceP(p, q []float64, order float64, periodic bool) (float64, error) {
	if len(p) != len(q) {
		return 0, ErrDimensionMismatch
	}

	dist := 0.0
	for dim := range p {
		d := math.Abs(p[dim] - q[dim])
		if periodic {
			d = math.Min(d, math.Abs(1-d))
		}
		dist += math.Pow(d, order)
	}
	return dist, nil
}

// MinkowskiDistance computes the Minkowski distance of the given order.
// Order 2 yields Euclidean distance, order 1 Manhattan distance.
func MinkowskiDistance(p, q []float64, order float64, periodic bool) (float64, error) {
	dp, err := MinkowskiDistanceP(p, q, order, periodic)
	if err != nil {
		return 0, err
	}
	return math.Pow(dp, 1/order), nil
}

// EuclideanDistance computes the Euclidean distance between two points.
func EuclideanDistance(p, q []float64, periodic bool) (float64, error) {
	return MinkowskiDistance(p, q, 2, periodic)
}

// EuclideanDistanceSquared skips the final square root for cases where only
// relative comparisons are needed.
func EuclideanDistanceSquared(p, q []float64, periodic bool) (float64, error) {
	return MinkowskiDistanceP(p, q, 2, periodic)
}

// ManhattanDistance computes the Manhattan distance between two points.
func ManhattanDistance(p, q []float64, periodic bool) (float64, error) {
	return MinkowskiDistance(p, q, 1, periodic)
}
