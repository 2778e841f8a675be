// Package resource models environmental quantities tracked per node on
// their own grid topology. Each resource owns a set of cells whose levels
// are updated by a pluggable state machine (inflow/decay/diffusion or a
// deterministic waveform of epoch time); levels are mirrored in a flat
// array indexed by node for cheap aggregate statistics.
package resource

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/briandconnelly/seeds/internal/config"
	"github.com/briandconnelly/seeds/internal/sampling"
	"github.com/briandconnelly/seeds/internal/stats"
	"github.com/briandconnelly/seeds/internal/topology"
)

var (
	ErrUnknownResource = errors.New("resource not defined")
	ErrLatticeRequired = errors.New("resource topology must be a lattice type")
)

// Cell is the per-node state machine of one resource. Level reads and
// SetLevel writes the shared per-resource level array, so mutations are
// immediately visible to aggregate queries and to neighboring cells
// updated later in the same epoch.
type Cell interface {
	Node() int
	Level() float64
	SetLevel(level float64)
	// Update advances the cell one step, possibly mutating neighbors.
	Update(neighbors []Cell) error
}

// Resource is one named environmental quantity: a lattice topology, a
// cell per node, and the flat level mirror the cells write through.
type Resource struct {
	name           string
	kind           string
	topo           topology.Topology
	cells          []Cell
	levels         []float64
	available      bool
	eventsPerEpoch int
}

// latticeKinds are the topology variants a resource may use. Diffusion
// assumes a fixed grid, so random-geometric and well-mixed structures
// are rejected.
var latticeKinds = map[string]bool{
	"MooreTopology":      true,
	"VonNeumannTopology": true,
}

// New builds the named resource from its configuration section
// ("Resource:<name>"). The epoch callback gives waveform cells access to
// the experiment clock.
func New(cfg *config.Config, name string, rng *rand.Rand, epoch func() int) (*Resource, error) {
	section := "Resource:" + name

	kind := cfg.GetString(section, "type", "NormalResourceCell")
	topoKind := cfg.GetString(section, "topology", "MooreTopology")
	if !latticeKinds[topoKind] {
		return nil, fmt.Errorf("%w: %s configured %s", ErrLatticeRequired, name, topoKind)
	}
	available, err := cfg.GetBool(section, "available", true)
	if err != nil {
		return nil, err
	}
	initial, err := cfg.GetFloat(section, "initial", 0)
	if err != nil {
		return nil, err
	}

	topo, err := topology.New(topoKind, cfg, section, rng)
	if err != nil {
		return nil, err
	}

	eventsPerEpoch, err := cfg.GetInt(section, "events_per_epoch", topo.Size())
	if err != nil {
		return nil, err
	}
	if eventsPerEpoch < 0 {
		return nil, fmt.Errorf("%w: resource %s events_per_epoch can not be negative",
			config.ErrInvalidValue, name)
	}

	r := &Resource{
		name:           name,
		kind:           kind,
		topo:           topo,
		levels:         make([]float64, topo.Size()),
		available:      available,
		eventsPerEpoch: eventsPerEpoch,
	}
	for node := range r.levels {
		r.levels[node] = initial
	}

	r.cells = make([]Cell, topo.Size())
	for node := range r.cells {
		cell, err := newCell(kind, cfg, section, node, r.levels, epoch)
		if err != nil {
			return nil, err
		}
		r.cells[node] = cell
	}
	return r, nil
}

func (r *Resource) Name() string                { return r.name }
func (r *Resource) Kind() string                { return r.kind }
func (r *Resource) Size() int                   { return len(r.cells) }
func (r *Resource) Topology() topology.Topology { return r.topo }
func (r *Resource) Available() bool             { return r.available }
func (r *Resource) SetAvailable(available bool) { r.available = available }

// Level returns the current level at a node. Unavailable resources read
// as zero everywhere.
func (r *Resource) Level(node int) (float64, error) {
	if node < 0 || node >= len(r.levels) {
		return 0, fmt.Errorf("%w: resource %s node %d", topology.ErrNonexistentNode, r.name, node)
	}
	if !r.available {
		return 0, nil
	}
	return r.levels[node], nil
}

func (r *Resource) SetLevel(node int, level float64) error {
	if node < 0 || node >= len(r.levels) {
		return fmt.Errorf("%w: resource %s node %d", topology.ErrNonexistentNode, r.name, node)
	}
	r.levels[node] = level
	return nil
}

// Levels returns the flat per-node level array. The slice is the live
// mirror; callers must not modify it.
func (r *Resource) Levels() []float64 { return r.levels }

// Stats returns the mean, standard deviation, minimum, and maximum level
// over all nodes.
func (r *Resource) Stats() (mean, stddev, min, max float64) {
	return stats.Mean(r.levels), stats.StdDev(r.levels),
		stats.Min(r.levels), stats.Max(r.levels)
}

// Update advances the resource one epoch: eventsPerEpoch cells are
// sampled uniformly with replacement and updated in sampled order.
// Levels keep evolving even while the resource is unavailable; only
// reads are masked to zero.
func (r *Resource) Update(rng *rand.Rand) error {
	if r.eventsPerEpoch == 0 {
		return nil
	}

	nodes, err := sampling.WithReplacement(rng, r.Size(), r.eventsPerEpoch)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		neighborIDs, err := r.topo.Neighbors(node)
		if err != nil {
			return err
		}
		neighbors := make([]Cell, len(neighborIDs))
		for i, id := range neighborIDs {
			neighbors[i] = r.cells[id]
		}
		if err := r.cells[node].Update(neighbors); err != nil {
			return err
		}
	}
	return nil
}

// Manager owns the named resources of an experiment and gives cells
// coordinate-based access to them.
type Manager struct {
	resources map[string]*Resource
	names     []string
}

// NewManager builds a resource for every "Resource:<name>" section in the
// configuration.
func NewManager(cfg *config.Config, rng *rand.Rand, epoch func() int) (*Manager, error) {
	m := &Manager{resources: make(map[string]*Resource)}

	for _, section := range cfg.Sections() {
		const prefix = "Resource:"
		if len(section) <= len(prefix) || section[:len(prefix)] != prefix {
			continue
		}
		name := section[len(prefix):]
		r, err := New(cfg, name, rng, epoch)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", name, err)
		}
		m.resources[name] = r
		m.names = append(m.names, name)
	}
	sort.Strings(m.names)
	return m, nil
}

// Names returns the resource names in sorted order, which is also the
// per-epoch update order.
func (m *Manager) Names() []string { return m.names }

func (m *Manager) Get(name string) (*Resource, error) {
	r, ok := m.resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return r, nil
}

// Update advances every resource one epoch, in sorted name order so runs
// with the same seed stay reproducible.
func (m *Manager) Update(rng *rand.Rand) error {
	for _, name := range m.names {
		if err := m.resources[name].Update(rng); err != nil {
			return fmt.Errorf("resource %s: %w", name, err)
		}
	}
	return nil
}

// Level returns the named resource's level at the resource node nearest
// to the given coordinates. Population cells use this to read local
// conditions even when the resource lives on a different topology.
func (m *Manager) Level(name string, coords []float64) (float64, error) {
	r, err := m.Get(name)
	if err != nil {
		return 0, err
	}
	node, err := r.topo.NearestNode(coords)
	if err != nil {
		return 0, err
	}
	return r.Level(node)
}

// Scale multiplies the named resource's level nearest to the given
// coordinates by factor. Used by cells that consume or neutralize a
// local resource.
func (m *Manager) Scale(name string, coords []float64, factor float64) error {
	r, err := m.Get(name)
	if err != nil {
		return err
	}
	node, err := r.topo.NearestNode(coords)
	if err != nil {
		return err
	}
	if !r.available {
		return nil
	}
	return r.SetLevel(node, r.levels[node]*factor)
}
