package resource

import (
	"fmt"
	"math"
	"sort"

	"github.com/briandconnelly/seeds/internal/config"
)

func init() {
	mustRegister("NormalResourceCell", newNormalCell)
}

// NormalCell models a quantity that flows in at a constant rate, decays
// proportionally, and diffuses toward lower-level neighbors.
type NormalCell struct {
	node    int
	levels  []float64
	inflow  float64
	decay   float64
	outflow float64
}

func newNormalCell(cfg *config.Config, section string, node int, levels []float64, _ func() int) (Cell, error) {
	inflow, err := cfg.GetFloat(section, "inflow", 0)
	if err != nil {
		return nil, err
	}
	decay, err := cfg.GetFloat(section, "decay", 0)
	if err != nil {
		return nil, err
	}
	outflow, err := cfg.GetFloat(section, "outflow", 0)
	if err != nil {
		return nil, err
	}

	if decay < 0 || decay > 1 {
		return nil, fmt.Errorf("%w: NormalResourceCell decay must be in [0, 1]", config.ErrInvalidValue)
	}
	if outflow < 0 || outflow > 1 {
		return nil, fmt.Errorf("%w: NormalResourceCell outflow must be in [0, 1]", config.ErrInvalidValue)
	}

	return &NormalCell{
		node:    node,
		levels:  levels,
		inflow:  inflow,
		decay:   decay,
		outflow: outflow,
	}, nil
}

func (c *NormalCell) Node() int              { return c.node }
func (c *NormalCell) Level() float64         { return c.levels[c.node] }
func (c *NormalCell) SetLevel(level float64) { c.levels[c.node] = level }

// Update applies decay and inflow, then runs a greedy diffusion pass:
// neighbors with strictly lower levels receive outflow*(self-neighbor)
// each, processed lowest level first, stopping as soon as this cell no
// longer exceeds the next neighbor. The pass is deliberately sequential
// and order-dependent, not a simultaneous diffusion step.
func (c *NormalCell) Update(neighbors []Cell) error {
	c.SetLevel(math.Max(0, c.Level()*(1-c.decay)+c.inflow))

	if c.outflow == 0 || len(neighbors) == 0 {
		return nil
	}

	sorted := make([]Cell, len(neighbors))
	copy(sorted, neighbors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Level() < sorted[j].Level()
	})

	for _, n := range sorted {
		if c.Level() <= n.Level() {
			break
		}
		transfer := c.outflow * (c.Level() - n.Level())
		n.SetLevel(n.Level() + transfer)
		c.SetLevel(c.Level() - transfer)
	}
	return nil
}
