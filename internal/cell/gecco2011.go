package cell

import (
	"fmt"

	"github.com/briandconnelly/seeds/internal/config"
)

func init() {
	mustRegister("GECCO2011Cell", newGECCO2011Prototype)
}

// Host/parasite coevolution type indices.
const (
	GeccoEmpty = iota
	GeccoUninfectedSusceptible
	GeccoUninfectedResistant
	GeccoInfectedSensitive
	GeccoInfectedInsensitive
)

var geccoTypes = []string{
	"Empty",
	"Uninfected-Susceptible",
	"Uninfected-Resistant",
	"Infected-Sensitive",
	"Infected-Insensitive",
}

// antibioticResource is the environmental resource this cell type reads
// for antibiotic-induced mortality.
const antibioticResource = "Antibiotic"

type geccoParams struct {
	deathHosts      float64
	deathParasites  float64
	minVirulence    float64
	maxVirulence    float64
	costResistance  float64
	costInsensitive float64
	mutationRate    float64
	mutationSigma   float64
	vtransProb      float64
	ld100           float64
	pctNeutralized  float64
}

// GECCO2011Cell models coevolving hosts and parasites under antibiotic
// pressure. Parasites carry an evolvable virulence value and are the only
// source of antibiotic insensitivity; infected-insensitive hosts degrade
// the local antibiotic, and horizontal transmission probability scales
// linearly with virulence between the configured bounds.
type GECCO2011Cell struct {
	env       *Environment
	params    *geccoParams
	node      int
	typ       int
	virulence float64
}

func newGECCO2011Prototype(env *Environment) (*Prototype, error) {
	const section = "GECCO2011Cell"

	deathHosts, err := env.Config.RequireFloat(section, "death_hosts")
	if err != nil {
		return nil, err
	}
	deathParasites, err := env.Config.RequireFloat(section, "death_parasites")
	if err != nil {
		return nil, err
	}
	minVirulence, err := env.Config.GetFloat(section, "min_virulence", 0)
	if err != nil {
		return nil, err
	}
	maxVirulence, err := env.Config.RequireFloat(section, "max_virulence")
	if err != nil {
		return nil, err
	}
	costResistance, err := env.Config.RequireFloat(section, "cost_resistance")
	if err != nil {
		return nil, err
	}
	costInsensitive, err := env.Config.RequireFloat(section, "cost_antibiotic_resistance")
	if err != nil {
		return nil, err
	}
	mutationRate, err := env.Config.RequireFloat(section, "mutation_rate")
	if err != nil {
		return nil, err
	}
	mutationSigma, err := env.Config.RequireFloat(section, "mutation_sigma")
	if err != nil {
		return nil, err
	}
	vtransProb, err := env.Config.RequireFloat(section, "vtrans_prob")
	if err != nil {
		return nil, err
	}
	ld100, err := env.Config.RequireFloat(section, "ld100")
	if err != nil {
		return nil, err
	}
	pctNeutralized, err := env.Config.RequireFloat(section, "pct_neutralized")
	if err != nil {
		return nil, err
	}

	if maxVirulence <= minVirulence {
		return nil, fmt.Errorf("%w: GECCO2011Cell max_virulence must exceed min_virulence", config.ErrInvalidValue)
	}
	if ld100 <= 0 {
		return nil, fmt.Errorf("%w: GECCO2011Cell ld100 must be positive", config.ErrInvalidValue)
	}

	params := &geccoParams{
		deathHosts:      deathHosts,
		deathParasites:  deathParasites,
		minVirulence:    minVirulence,
		maxVirulence:    maxVirulence,
		costResistance:  costResistance,
		costInsensitive: costInsensitive,
		mutationRate:    mutationRate,
		mutationSigma:   mutationSigma,
		vtransProb:      vtransProb,
		ld100:           ld100,
		pctNeutralized:  pctNeutralized,
	}

	newWithType := func(node, typ int) (Cell, error) {
		if typ < 0 || typ >= len(geccoTypes) {
			return nil, ErrInvalidType
		}
		return &GECCO2011Cell{
			env:       env,
			params:    params,
			node:      node,
			typ:       typ,
			virulence: minVirulence + env.RNG.Float64()*(maxVirulence-minVirulence),
		}, nil
	}
	return &Prototype{
		Name:  "GECCO2011Cell",
		Types: geccoTypes,
		New: func(node int) (Cell, error) {
			return newWithType(node, env.RNG.Intn(len(geccoTypes)))
		},
		NewWithType: newWithType,
	}, nil
}

func (c *GECCO2011Cell) Node() int { return c.node }
func (c *GECCO2011Cell) Type() int { return c.typ }

// Virulence returns the cell's current parasite virulence value.
func (c *GECCO2011Cell) Virulence() float64 { return c.virulence }

// antibioticMortality is the extra death probability imposed by the
// antibiotic: the mean level over the neighborhood, normalized by the
// LD100 threshold. Averaging over neighbors rather than reading only the
// local level lets insensitive degraders shelter their neighborhood.
func (c *GECCO2011Cell) antibioticMortality(neighbors []Cell) (float64, error) {
	total := 0.0
	for _, n := range neighbors {
		coords, err := c.env.Coords(n.Node())
		if err != nil {
			return 0, err
		}
		level, err := c.env.Resources.Level(antibioticResource, coords)
		if err != nil {
			return 0, err
		}
		total += level
	}
	return total / float64(len(neighbors)) / c.params.ld100, nil
}

// horizTransProb scales linearly with virulence from 0 at min_virulence
// to 1 at max_virulence.
func (c *GECCO2011Cell) horizTransProb() float64 {
	return (c.virulence - c.params.minVirulence) / (c.params.maxVirulence - c.params.minVirulence)
}

func (c *GECCO2011Cell) mutatedVirulence(parent float64) float64 {
	if c.env.RNG.Float64() < c.params.mutationRate {
		drawn := c.env.RNG.NormFloat64()*c.params.mutationSigma + parent
		return clamp(drawn, c.params.minVirulence, c.params.maxVirulence)
	}
	return parent
}

func (c *GECCO2011Cell) Update(neighbors []Cell) error {
	if len(neighbors) == 0 {
		return nil
	}

	switch c.typ {
	case GeccoEmpty:
		return c.updateEmpty(neighbors)
	case GeccoUninfectedSusceptible:
		g, err := c.antibioticMortality(neighbors)
		if err != nil {
			return err
		}
		if c.env.RNG.Float64() < c.params.deathHosts+g {
			c.die()
		}
	case GeccoUninfectedResistant:
		g, err := c.antibioticMortality(neighbors)
		if err != nil {
			return err
		}
		if c.env.RNG.Float64() < c.params.deathHosts+c.params.costResistance+g {
			c.die()
		}
	case GeccoInfectedSensitive:
		g, err := c.antibioticMortality(neighbors)
		if err != nil {
			return err
		}
		switch {
		case c.env.RNG.Float64() < c.params.deathHosts+c.virulence+g:
			c.die()
		case c.env.RNG.Float64() < c.params.deathParasites:
			c.cure()
		case c.env.RNG.Float64() < c.horizTransProb():
			c.transmit(neighbors, GeccoInfectedInsensitive)
		}
	case GeccoInfectedInsensitive:
		// degrade the local antibiotic before anything else
		coords, err := c.env.Coords(c.node)
		if err != nil {
			return err
		}
		if err := c.env.Resources.Scale(antibioticResource, coords, 1-c.params.pctNeutralized); err != nil {
			return err
		}
		switch {
		case c.env.RNG.Float64() < c.params.deathHosts+c.virulence+c.params.costInsensitive:
			c.die()
		case c.env.RNG.Float64() < c.params.deathParasites:
			c.cure()
		case c.env.RNG.Float64() < c.horizTransProb():
			c.transmit(neighbors, GeccoInfectedSensitive)
		}
	}
	return nil
}

// updateEmpty lets a uniformly chosen neighbor reproduce into this node.
// Offspring of infected parents inherit the parasite only on vertical
// transmission, with virulence subject to Gaussian mutation; offspring
// may also mutate into or out of parasite resistance.
func (c *GECCO2011Cell) updateEmpty(neighbors []Cell) error {
	parent, ok := neighbors[c.env.RNG.Intn(len(neighbors))].(*GECCO2011Cell)
	if !ok || parent.typ == GeccoEmpty {
		return nil
	}

	c.typ = parent.typ

	if parent.typ == GeccoInfectedSensitive || parent.typ == GeccoInfectedInsensitive {
		if c.env.RNG.Float64() < c.params.vtransProb {
			c.typ = parent.typ
			c.virulence = c.mutatedVirulence(parent.virulence)

			if parent.typ == GeccoInfectedSensitive && c.env.RNG.Float64() < c.params.mutationRate {
				c.typ = GeccoInfectedInsensitive
			}
			if parent.typ == GeccoInfectedInsensitive && c.env.RNG.Float64() < c.params.mutationRate {
				c.typ = GeccoInfectedSensitive
			}
		} else {
			c.typ = GeccoUninfectedSusceptible
		}
	}

	if parent.typ == GeccoUninfectedSusceptible && c.env.RNG.Float64() < c.params.mutationRate {
		c.typ = GeccoUninfectedResistant
	}
	if parent.typ == GeccoUninfectedResistant && c.env.RNG.Float64() < c.params.mutationRate {
		c.typ = GeccoUninfectedSusceptible
	}

	c.env.Census.UpdateTypeCount(GeccoEmpty, c.typ)
	return nil
}

func (c *GECCO2011Cell) die() {
	c.env.Census.UpdateTypeCount(c.typ, GeccoEmpty)
	c.typ = GeccoEmpty
}

// cure removes the parasite, leaving an uninfected susceptible host.
func (c *GECCO2011Cell) cure() {
	c.env.Census.UpdateTypeCount(c.typ, GeccoUninfectedSusceptible)
	c.typ = GeccoUninfectedSusceptible
}

// transmit attempts horizontal transmission to one uniformly chosen
// neighbor. Only uninfected-susceptible neighbors can be infected; the
// parasite's virulence mutates with the usual rate, and insensitivity
// can be gained or lost in transit (flipTo names the flipped state).
func (c *GECCO2011Cell) transmit(neighbors []Cell, flipTo int) {
	neighbor, ok := neighbors[c.env.RNG.Intn(len(neighbors))].(*GECCO2011Cell)
	if !ok || neighbor.typ != GeccoUninfectedSusceptible {
		return
	}

	c.env.Census.UpdateTypeCount(neighbor.typ, c.typ)
	neighbor.typ = c.typ
	neighbor.virulence = c.mutatedVirulence(c.virulence)

	if c.env.RNG.Float64() < c.params.mutationRate {
		c.env.Census.UpdateTypeCount(neighbor.typ, flipTo)
		neighbor.typ = flipTo
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
