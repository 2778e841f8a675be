package topology

import (
	"fmt"
	"math/rand"

	"github.com/briandconnelly/seeds/internal/config"
)

func init() {
	mustRegister("MooreTopology", newMooreFromConfig)
	mustRegister("VonNeumannTopology", newVonNeumannFromConfig)
}

// LatticeParams configures a size x size 2D lattice. Moore neighborhoods
// connect every node within Chebyshev distance Radius; von Neumann
// neighborhoods use Manhattan distance. Periodic lattices wrap row and
// column indices, forming a torus.
type LatticeParams struct {
	Size     int
	Radius   int
	Periodic bool
}

func (p LatticeParams) validate(kind string) error {
	if p.Size < 1 {
		return fmt.Errorf("%w: %s size must be positive", config.ErrInvalidValue, kind)
	}
	if p.Radius < 0 {
		return fmt.Errorf("%w: %s radius must be at least 0", config.ErrInvalidValue, kind)
	}
	if p.Radius >= p.Size {
		return fmt.Errorf("%w: %s radius can not exceed grid size", config.ErrInvalidValue, kind)
	}
	return nil
}

func latticeParamsFromConfig(cfg *config.Config, section string) (LatticeParams, error) {
	size, err := cfg.RequireInt(section, "size")
	if err != nil {
		return LatticeParams{}, err
	}
	radius, err := cfg.GetInt(section, "radius", 1)
	if err != nil {
		return LatticeParams{}, err
	}
	periodic, err := cfg.GetBool(section, "periodic", false)
	if err != nil {
		return LatticeParams{}, err
	}
	return LatticeParams{Size: size, Radius: radius, Periodic: periodic}, nil
}

func newMooreFromConfig(cfg *config.Config, section string, _ *rand.Rand) (Topology, error) {
	params, err := latticeParamsFromConfig(cfg, section)
	if err != nil {
		return nil, err
	}
	return NewMoore(params)
}

func newVonNeumannFromConfig(cfg *config.Config, section string, _ *rand.Rand) (Topology, error) {
	params, err := latticeParamsFromConfig(cfg, section)
	if err != nil {
		return nil, err
	}
	return NewVonNeumann(params)
}

// NewMoore builds a lattice where each node is connected to all nodes
// within Chebyshev distance Radius (8 neighbors at radius 1).
func NewMoore(p LatticeParams) (*Graph, error) {
	if err := p.validate("MooreTopology"); err != nil {
		return nil, err
	}
	g := buildLattice(p, func(dr, dc int) bool {
		return dr != 0 || dc != 0
	})
	g.freeze("MooreTopology")
	return g, nil
}

// NewVonNeumann builds a lattice where each node is connected to all nodes
// within Manhattan distance Radius (4 neighbors at radius 1).
func NewVonNeumann(p LatticeParams) (*Graph, error) {
	if err := p.validate("VonNeumannTopology"); err != nil {
		return nil, err
	}
	radius := p.Radius
	g := buildLattice(p, func(dr, dc int) bool {
		if dr == 0 && dc == 0 {
			return false
		}
		return abs(dr)+abs(dc) <= radius
	})
	g.freeze("VonNeumannTopology")
	return g, nil
}

// buildLattice places size*size nodes at coordinates (row/size, col/size)
// and connects each node to the offsets within radius accepted by include.
func buildLattice(p LatticeParams, include func(dr, dc int) bool) *Graph {
	g := NewGraph(2, p.Periodic)
	size := p.Size

	for node := 0; node < size*size; node++ {
		row, col := node/size, node%size
		g.addNodeUnchecked([]float64{float64(row) / float64(size), float64(col) / float64(size)})
	}

	for node := 0; node < size*size; node++ {
		row, col := node/size, node%size
		for dr := -p.Radius; dr <= p.Radius; dr++ {
			r := row + dr
			if !p.Periodic && (r < 0 || r >= size) {
				continue
			}
			for dc := -p.Radius; dc <= p.Radius; dc++ {
				c := col + dc
				if !p.Periodic && (c < 0 || c >= size) {
					continue
				}
				if !include(dr, dc) {
					continue
				}
				neighbor := mod(r, size)*size + mod(c, size)
				if neighbor != node {
					g.addEdgeUnchecked(node, neighbor)
				}
			}
		}
	}
	return g
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func mod(x, n int) int {
	return ((x % n) + n) % n
}
