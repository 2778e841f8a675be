package cell

import (
	"fmt"
	"math"

	"github.com/briandconnelly/seeds/internal/config"
	"github.com/briandconnelly/seeds/internal/sampling"
)

func init() {
	mustRegister("QuasispeciesCell", newQuasispeciesPrototype)
}

// Quasispecies type indices.
const (
	QuasiEmpty = iota
	QuasiNarrow
	QuasiWide
)

var quasiTypes = []string{"Empty", "Narrow", "Wide"}

type quasiParams struct {
	deathRate      float64
	genotypeLength int
	siteMutRate    float64
	narrowOrder    float64
	wideMax        float64
}

// QuasispeciesCell implements the two-peak quasispecies model on a
// bitstring genotype. The first bit selects the fitness peak (0 narrow,
// 1 wide); the fraction of remaining bits set to one determines fitness,
// steeply for the narrow peak (polynomial) and gently for the wide one
// (linear, capped). Empty nodes are recolonized by fitness-proportional
// selection among neighbors with per-site mutation of the inherited
// genotype.
type QuasispeciesCell struct {
	env      *Environment
	params   *quasiParams
	node     int
	typ      int
	genotype []uint8
}

func newQuasispeciesPrototype(env *Environment) (*Prototype, error) {
	const section = "QuasispeciesCell"

	deathRate, err := env.Config.RequireFloat(section, "death_rate")
	if err != nil {
		return nil, err
	}
	genotypeLength, err := env.Config.RequireInt(section, "genotype_length")
	if err != nil {
		return nil, err
	}
	siteMutRate, err := env.Config.RequireFloat(section, "site_mut_rate")
	if err != nil {
		return nil, err
	}
	narrowOrder, err := env.Config.GetFloat(section, "narrow_polynomial_order", 4)
	if err != nil {
		return nil, err
	}
	wideMax, err := env.Config.GetFloat(section, "wide_max_value", 0.75)
	if err != nil {
		return nil, err
	}

	if deathRate < 0 {
		return nil, fmt.Errorf("%w: QuasispeciesCell death_rate can not be negative", config.ErrInvalidValue)
	}
	if genotypeLength < 2 {
		return nil, fmt.Errorf("%w: QuasispeciesCell genotype_length must be at least 2", config.ErrInvalidValue)
	}
	if siteMutRate < 0 {
		return nil, fmt.Errorf("%w: QuasispeciesCell site_mut_rate can not be negative", config.ErrInvalidValue)
	}
	if narrowOrder <= 0 {
		return nil, fmt.Errorf("%w: QuasispeciesCell narrow_polynomial_order must be positive", config.ErrInvalidValue)
	}
	if wideMax < 0 {
		return nil, fmt.Errorf("%w: QuasispeciesCell wide_max_value can not be negative", config.ErrInvalidValue)
	}

	params := &quasiParams{
		deathRate:      deathRate,
		genotypeLength: genotypeLength,
		siteMutRate:    siteMutRate,
		narrowOrder:    narrowOrder,
		wideMax:        wideMax,
	}

	newWithType := func(node, typ int) (Cell, error) {
		if typ < 0 || typ >= len(quasiTypes) {
			return nil, ErrInvalidType
		}
		genotype := make([]uint8, genotypeLength)
		for i := range genotype {
			genotype[i] = uint8(env.RNG.Intn(2))
		}
		// keep the peak bit consistent with the assigned type; empty
		// cells carry a genotype too but it is inert until recolonized
		if typ > 0 {
			genotype[0] = uint8(typ - 1)
		} else {
			genotype[0] = 0
		}
		return &QuasispeciesCell{env: env, params: params, node: node, typ: typ, genotype: genotype}, nil
	}
	return &Prototype{
		Name:  "QuasispeciesCell",
		Types: quasiTypes,
		New: func(node int) (Cell, error) {
			return newWithType(node, env.RNG.Intn(len(quasiTypes)))
		},
		NewWithType: newWithType,
	}, nil
}

func (c *QuasispeciesCell) Node() int { return c.node }
func (c *QuasispeciesCell) Type() int { return c.typ }

// Fitness of a genotype: fraction of non-peak bits set to one, raised to
// the polynomial order on the narrow peak, scaled linearly on the wide
// one.
func (p *quasiParams) fitness(genotype []uint8) float64 {
	ones := 0
	for _, bit := range genotype[1:] {
		if bit == 1 {
			ones++
		}
	}
	fraction := float64(ones) / float64(len(genotype)-1)

	if genotype[0] == 0 {
		return math.Pow(fraction, p.narrowOrder)
	}
	return fraction * p.wideMax
}

func (c *QuasispeciesCell) mutate(genotype []uint8) []uint8 {
	mutated := make([]uint8, len(genotype))
	for i, bit := range genotype {
		if c.env.RNG.Float64() < c.params.siteMutRate {
			mutated[i] = 1 - bit
		} else {
			mutated[i] = bit
		}
	}
	return mutated
}

func (c *QuasispeciesCell) Update(neighbors []Cell) error {
	if len(neighbors) == 0 {
		return nil
	}

	if c.typ == QuasiEmpty {
		parent := c.chooseParent(neighbors)
		c.typ = parent.Type()
		if c.typ != QuasiEmpty {
			c.genotype = c.mutate(parent.genotype)
			c.typ = int(c.genotype[0]) + 1
		}
		c.env.Census.UpdateTypeCount(QuasiEmpty, c.typ)
		return nil
	}

	if c.env.RNG.Float64() < c.params.deathRate {
		c.env.Census.UpdateTypeCount(c.typ, QuasiEmpty)
		c.typ = QuasiEmpty
	}
	return nil
}

// chooseParent runs roulette selection over neighbor fitness. When every
// neighbor has zero fitness the last one wins by convention.
func (c *QuasispeciesCell) chooseParent(neighbors []Cell) *QuasispeciesCell {
	weights := make([]float64, len(neighbors))
	for i, n := range neighbors {
		weights[i] = c.params.fitness(n.(*QuasispeciesCell).genotype)
	}

	picked, err := sampling.RouletteSelectOne(c.env.RNG, weights)
	if err != nil {
		picked = len(neighbors) - 1
	}
	return neighbors[picked].(*QuasispeciesCell)
}
