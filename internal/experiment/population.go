package experiment

import (
	"fmt"
	"math/rand"

	"github.com/briandconnelly/seeds/internal/cell"
	"github.com/briandconnelly/seeds/internal/config"
	"github.com/briandconnelly/seeds/internal/sampling"
	"github.com/briandconnelly/seeds/internal/topology"
)

// Population couples a topology with one cell per node and maintains the
// per-type census and the per-epoch transition matrix incrementally, so
// aggregates never require rescanning the nodes.
type Population struct {
	name  string
	topo  topology.Topology
	proto *cell.Prototype
	cells []cell.Cell
	rng   *rand.Rand

	typeCount   []int
	transitions []int // row-major, types x types, reset each epoch

	eventsPerEpoch    int
	degenerateUpdates int

	// neighbor IDs per node, filled lazily; only used when the topology
	// reports static neighbor sets
	neighborCache [][]int
}

// NewPopulation builds the population described by the given config
// section. The topology's parameters live in a section named after the
// topology kind, and likewise for the cell variant.
func NewPopulation(cfg *config.Config, section string, rng *rand.Rand, resources cell.ResourceAccess) (*Population, error) {
	topoKind := cfg.GetString(section, "topology", "CartesianTopology")
	cellKind, err := cfg.RequireString(section, "cell")
	if err != nil {
		return nil, err
	}

	topo, err := topology.New(topoKind, cfg, topoKind, rng)
	if err != nil {
		return nil, err
	}

	eventsPerEpoch, err := cfg.GetInt(section, "events_per_epoch", topo.Size())
	if err != nil {
		return nil, err
	}
	if eventsPerEpoch < 0 {
		return nil, fmt.Errorf("%w: %s events_per_epoch can not be negative",
			config.ErrInvalidValue, section)
	}

	p := &Population{
		name:           section,
		topo:           topo,
		rng:            rng,
		eventsPerEpoch: eventsPerEpoch,
		neighborCache:  make([][]int, topo.Size()),
	}

	env := &cell.Environment{
		Config:    cfg,
		RNG:       rng,
		Census:    p,
		Resources: resources,
		Coords:    topo.Coords,
		Distance:  topo.NodeDistance,
	}
	proto, err := cell.NewPrototype(cellKind, env)
	if err != nil {
		return nil, err
	}
	p.proto = proto
	p.typeCount = make([]int, len(proto.Types))
	p.transitions = make([]int, len(proto.Types)*len(proto.Types))

	p.cells = make([]cell.Cell, topo.Size())
	for node := range p.cells {
		c, err := proto.New(node)
		if err != nil {
			return nil, err
		}
		p.cells[node] = c
		p.typeCount[c.Type()]++
	}
	return p, nil
}

func (p *Population) Name() string                { return p.name }
func (p *Population) Size() int                   { return len(p.cells) }
func (p *Population) Topology() topology.Topology { return p.topo }
func (p *Population) TypeNames() []string         { return p.proto.Types }
func (p *Population) DegenerateUpdates() int      { return p.degenerateUpdates }

// Cell returns the cell at a node, for read-only inspection.
func (p *Population) Cell(node int) (cell.Cell, error) {
	if node < 0 || node >= len(p.cells) {
		return nil, fmt.Errorf("%w: %d", topology.ErrNonexistentNode, node)
	}
	return p.cells[node], nil
}

// UpdateTypeCount moves one cell from type old to type new in the census
// and records the transition for the current epoch. Transitions with
// old == new land on the matrix diagonal.
func (p *Population) UpdateTypeCount(old, new int) {
	p.typeCount[old]--
	p.typeCount[new]++
	p.transitions[old*len(p.proto.Types)+new]++
}

// Census returns a copy of the per-type cell counts.
func (p *Population) Census() []int {
	counts := make([]int, len(p.typeCount))
	copy(counts, p.typeCount)
	return counts
}

// Transitions returns a copy of the transition matrix for the epoch
// currently being (or just) updated, row-major with types*from+to
// indexing.
func (p *Population) Transitions() []int {
	matrix := make([]int, len(p.transitions))
	copy(matrix, p.transitions)
	return matrix
}

// Update runs one epoch: the transition matrix is reset, then
// eventsPerEpoch nodes are sampled uniformly with replacement and their
// cells updated in sampled order. A node sampled twice is updated twice,
// the second time seeing whatever the first update (and any neighbor
// mutations) left behind. Updates of cells without neighbors are counted
// as degenerate and skipped.
func (p *Population) Update() error {
	for i := range p.transitions {
		p.transitions[i] = 0
	}
	if p.eventsPerEpoch == 0 || len(p.cells) == 0 {
		return nil
	}

	nodes, err := sampling.WithReplacement(p.rng, len(p.cells), p.eventsPerEpoch)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		neighborIDs, err := p.neighborsOf(node)
		if err != nil {
			return err
		}
		if len(neighborIDs) == 0 {
			p.degenerateUpdates++
			continue
		}
		neighbors := make([]cell.Cell, len(neighborIDs))
		for i, id := range neighborIDs {
			neighbors[i] = p.cells[id]
		}
		if err := p.cells[node].Update(neighbors); err != nil {
			return err
		}
	}
	return nil
}

func (p *Population) neighborsOf(node int) ([]int, error) {
	if !p.topo.Static() {
		return p.topo.Neighbors(node)
	}
	if p.neighborCache[node] == nil {
		ids, err := p.topo.Neighbors(node)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []int{}
		}
		p.neighborCache[node] = ids
	}
	return p.neighborCache[node], nil
}
