package cell

func init() {
	mustRegister("Kerr07Cell", newKerr07Prototype)
}

// Kerr07 type indices.
const (
	Kerr07Empty = iota
	Kerr07Sensitive
	Kerr07Resistant
	Kerr07Producer
)

var kerr07Types = []string{"Empty", "Sensitive", "Resistant", "Producer"}

type kerr07Params struct {
	deathSensitive float64
	deathResistant float64
	deathProducer  float64
	toxicity       float64
}

// Kerr07Cell models toxin-mediated non-transitive competition between
// bacteriocin producers, resistant cells, and sensitive cells. Sensitive
// cells suffer extra mortality proportional to the fraction of producers
// in their neighborhood; empty nodes are recolonized by a uniformly
// chosen neighbor's type.
type Kerr07Cell struct {
	env    *Environment
	params *kerr07Params
	node   int
	typ    int
}

func newKerr07Prototype(env *Environment) (*Prototype, error) {
	const section = "Kerr07Cell"

	deathSensitive, err := env.Config.RequireFloat(section, "death_sensitive")
	if err != nil {
		return nil, err
	}
	deathResistant, err := env.Config.RequireFloat(section, "death_resistant")
	if err != nil {
		return nil, err
	}
	deathProducer, err := env.Config.RequireFloat(section, "death_producer")
	if err != nil {
		return nil, err
	}
	toxicity, err := env.Config.RequireFloat(section, "toxicity")
	if err != nil {
		return nil, err
	}
	params := &kerr07Params{
		deathSensitive: deathSensitive,
		deathResistant: deathResistant,
		deathProducer:  deathProducer,
		toxicity:       toxicity,
	}

	newWithType := func(node, typ int) (Cell, error) {
		if typ < 0 || typ >= len(kerr07Types) {
			return nil, ErrInvalidType
		}
		return &Kerr07Cell{env: env, params: params, node: node, typ: typ}, nil
	}
	return &Prototype{
		Name:  "Kerr07Cell",
		Types: kerr07Types,
		New: func(node int) (Cell, error) {
			return newWithType(node, env.RNG.Intn(len(kerr07Types)))
		},
		NewWithType: newWithType,
	}, nil
}

func (c *Kerr07Cell) Node() int { return c.node }
func (c *Kerr07Cell) Type() int { return c.typ }

func (c *Kerr07Cell) Update(neighbors []Cell) error {
	if len(neighbors) == 0 {
		return nil
	}

	switch c.typ {
	case Kerr07Empty:
		parent := neighbors[c.env.RNG.Intn(len(neighbors))]
		// recorded even when the parent is also empty, landing on the
		// transition matrix diagonal
		c.env.Census.UpdateTypeCount(Kerr07Empty, parent.Type())
		c.typ = parent.Type()

	case Kerr07Sensitive:
		producers := 0
		for _, n := range neighbors {
			if n.Type() == Kerr07Producer {
				producers++
			}
		}
		producerFraction := float64(producers) / float64(len(neighbors))
		if c.env.RNG.Float64() < c.params.deathSensitive+c.params.toxicity*producerFraction {
			c.env.Census.UpdateTypeCount(Kerr07Sensitive, Kerr07Empty)
			c.typ = Kerr07Empty
		}

	case Kerr07Resistant:
		if c.env.RNG.Float64() < c.params.deathResistant {
			c.env.Census.UpdateTypeCount(Kerr07Resistant, Kerr07Empty)
			c.typ = Kerr07Empty
		}

	case Kerr07Producer:
		if c.env.RNG.Float64() < c.params.deathProducer {
			c.env.Census.UpdateTypeCount(Kerr07Producer, Kerr07Empty)
			c.typ = Kerr07Empty
		}
	}
	return nil
}
