// Package cell holds the organism state machines that occupy population
// nodes. Each variant defines a fixed list of types and an update rule
// driven by the cell's neighbors; variants are resolved by name through
// the package registry. Updates may mutate a neighbor directly (infection,
// competition), so aggregate counts are maintained through the Census
// callback rather than by rescanning the population.
package cell

import (
	"errors"
	"math/rand"

	"github.com/briandconnelly/seeds/internal/config"
)

var ErrInvalidType = errors.New("cell type index out of range")

// Cell is the organism (or empty slot) at one population node.
type Cell interface {
	Node() int
	// Type returns the cell's current type index into the variant's
	// type name list.
	Type() int
	// Update advances the cell one step given its current neighbors.
	// A cell with no neighbors is skipped, not failed.
	Update(neighbors []Cell) error
}

// Census receives every type change as it happens, keeping per-type
// counts and the epoch transition matrix consistent without rescans.
// Transitions with old == new land on the matrix diagonal.
type Census interface {
	UpdateTypeCount(old, new int)
}

// ResourceAccess reads and adjusts environmental resource levels by
// coordinate, letting cells interact with resources that live on a
// different topology than the population.
type ResourceAccess interface {
	Level(name string, coords []float64) (float64, error)
	Scale(name string, coords []float64, factor float64) error
}

// Environment bundles everything a cell can see beyond its neighbors:
// configuration, the shared random stream, census bookkeeping, resources,
// and coordinate queries against the population topology.
type Environment struct {
	Config    *config.Config
	RNG       *rand.Rand
	Census    Census
	Resources ResourceAccess
	Coords    func(node int) ([]float64, error)
	Distance  func(a, b int) (float64, error)
}

// Prototype is a cell variant bound to an environment, ready to populate
// nodes. New draws the initial type uniformly at random; NewWithType
// fixes it, which seeding and tests rely on.
type Prototype struct {
	Name        string
	Types       []string
	New         func(node int) (Cell, error)
	NewWithType func(node int, typ int) (Cell, error)
}
