package cell

import (
	"github.com/briandconnelly/seeds/internal/sampling"
)

func init() {
	mustRegister("RPSCell", newRPSPrototype)
}

// Rock-paper-scissors type indices. Each type is outcompeted by the next
// one in cyclic order.
const (
	Rock = iota
	Paper
	Scissors
)

var rpsTypes = []string{"Rock", "Paper", "Scissors"}

// distanceEpsilon keeps the inverse-distance weights finite when a
// neighbor sits at distance zero, which happens in well-mixed topologies.
const distanceEpsilon = 1e-12

type rpsParams struct {
	distanceDependent bool
}

// RPSCell plays the classic rock-paper-scissors game against one
// randomly chosen neighbor per update: if the competitor's type defeats
// this cell's type, this cell adopts the competitor's type.
type RPSCell struct {
	env    *Environment
	params *rpsParams
	node   int
	typ    int
}

func newRPSPrototype(env *Environment) (*Prototype, error) {
	distanceDependent, err := env.Config.GetBool("RPSCell", "distance_dependent", false)
	if err != nil {
		return nil, err
	}
	params := &rpsParams{distanceDependent: distanceDependent}

	newWithType := func(node, typ int) (Cell, error) {
		if typ < 0 || typ >= len(rpsTypes) {
			return nil, ErrInvalidType
		}
		return &RPSCell{env: env, params: params, node: node, typ: typ}, nil
	}
	return &Prototype{
		Name:  "RPSCell",
		Types: rpsTypes,
		New: func(node int) (Cell, error) {
			return newWithType(node, env.RNG.Intn(len(rpsTypes)))
		},
		NewWithType: newWithType,
	}, nil
}

func (c *RPSCell) Node() int { return c.node }
func (c *RPSCell) Type() int { return c.typ }

func (c *RPSCell) Update(neighbors []Cell) error {
	if len(neighbors) == 0 {
		return nil
	}

	competitor, err := c.chooseCompetitor(neighbors)
	if err != nil {
		return err
	}

	winner := (c.typ + 1) % len(rpsTypes)
	if competitor.Type() == winner {
		c.env.Census.UpdateTypeCount(c.typ, winner)
		c.typ = winner
	}
	return nil
}

// chooseCompetitor picks a neighbor uniformly, or with probability
// proportional to inverse distance when distance_dependent is set so that
// closer neighbors compete more often.
func (c *RPSCell) chooseCompetitor(neighbors []Cell) (Cell, error) {
	if !c.params.distanceDependent {
		return neighbors[c.env.RNG.Intn(len(neighbors))], nil
	}

	weights := make([]float64, len(neighbors))
	for i, n := range neighbors {
		d, err := c.env.Distance(c.node, n.Node())
		if err != nil {
			return nil, err
		}
		weights[i] = 1 / (d + distanceEpsilon)
	}
	picked, err := sampling.RouletteSelectOne(c.env.RNG, weights)
	if err != nil {
		return nil, err
	}
	return neighbors[picked], nil
}
