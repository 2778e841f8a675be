package cell

func init() {
	mustRegister("GameOfLifeCell", newGameOfLifePrototype)
}

// Game of Life type indices.
const (
	Alive = iota
	Dead
)

var lifeTypes = []string{"Alive", "Dead"}

// GameOfLifeCell implements Conway's rules: a live cell with fewer than
// two or more than three live neighbors dies, a dead cell with exactly
// three live neighbors is born, and everything else is unchanged. A cell
// with no neighbors can not be updated and is skipped.
type GameOfLifeCell struct {
	env  *Environment
	node int
	typ  int
}

func newGameOfLifePrototype(env *Environment) (*Prototype, error) {
	newWithType := func(node, typ int) (Cell, error) {
		if typ < 0 || typ >= len(lifeTypes) {
			return nil, ErrInvalidType
		}
		return &GameOfLifeCell{env: env, node: node, typ: typ}, nil
	}
	return &Prototype{
		Name:  "GameOfLifeCell",
		Types: lifeTypes,
		New: func(node int) (Cell, error) {
			return newWithType(node, env.RNG.Intn(len(lifeTypes)))
		},
		NewWithType: newWithType,
	}, nil
}

func (c *GameOfLifeCell) Node() int { return c.node }
func (c *GameOfLifeCell) Type() int { return c.typ }

func (c *GameOfLifeCell) Update(neighbors []Cell) error {
	if len(neighbors) == 0 {
		return nil
	}

	live := 0
	for _, n := range neighbors {
		if n.Type() == Alive {
			live++
		}
	}

	switch {
	case c.typ == Alive && (live < 2 || live > 3):
		c.env.Census.UpdateTypeCount(Alive, Dead)
		c.typ = Dead
	case c.typ == Dead && live == 3:
		c.env.Census.UpdateTypeCount(Dead, Alive)
		c.typ = Alive
	}
	return nil
}
