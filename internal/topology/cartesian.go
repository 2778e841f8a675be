package topology

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/briandconnelly/seeds/internal/config"
	"github.com/briandconnelly/seeds/internal/geometry"
)

func init() {
	mustRegister("CartesianTopology", newCartesianFromConfig)
}

// CartesianParams configures a random-geometric topology: nodes are placed
// uniformly at random in the unit hypercube and connected to every node
// within a radius chosen so that the expected degree equals
// ExpectedNeighbors.
type CartesianParams struct {
	Size               int
	ExpectedNeighbors  int
	Dimensions         int
	Periodic           bool
	RemoveDisconnected bool
}

func newCartesianFromConfig(cfg *config.Config, section string, rng *rand.Rand) (Topology, error) {
	size, err := cfg.RequireInt(section, "size")
	if err != nil {
		return nil, err
	}
	expected, err := cfg.GetInt(section, "expected_neighbors", 0)
	if err != nil {
		return nil, err
	}
	dimensions, err := cfg.GetInt(section, "dimensions", 2)
	if err != nil {
		return nil, err
	}
	periodic, err := cfg.GetBool(section, "periodic", false)
	if err != nil {
		return nil, err
	}
	removeDisconnected, err := cfg.GetBool(section, "remove_disconnected", true)
	if err != nil {
		return nil, err
	}

	return NewCartesian(CartesianParams{
		Size:               size,
		ExpectedNeighbors:  expected,
		Dimensions:         dimensions,
		Periodic:           periodic,
		RemoveDisconnected: removeDisconnected,
	}, rng)
}

// NewCartesian builds a random-geometric topology. Nodes left without
// neighbors are either dropped (IDs relabeled contiguous) or connected to
// one randomly chosen node, per RemoveDisconnected.
func NewCartesian(p CartesianParams, rng *rand.Rand) (*Graph, error) {
	if p.Size < 1 {
		return nil, fmt.Errorf("%w: CartesianTopology size must be positive", config.ErrInvalidValue)
	}
	if p.Dimensions < 1 {
		return nil, fmt.Errorf("%w: CartesianTopology dimensions must be at least 1", config.ErrInvalidValue)
	}
	if p.ExpectedNeighbors < 0 {
		return nil, fmt.Errorf("%w: CartesianTopology expected_neighbors can not be negative", config.ErrInvalidValue)
	}
	if p.ExpectedNeighbors > p.Size {
		return nil, fmt.Errorf("%w: CartesianTopology expected_neighbors can not exceed size", config.ErrInvalidValue)
	}

	radius := connectionRadius(p.Size, p.ExpectedNeighbors, p.Dimensions)

	g := NewGraph(p.Dimensions, p.Periodic)
	for i := 0; i < p.Size; i++ {
		coords := make([]float64, p.Dimensions)
		for d := range coords {
			coords[d] = rng.Float64()
		}
		g.addNodeUnchecked(coords)
	}

	if radius > 0 && p.Size > 1 {
		connectWithinRadius(g, radius, p.Periodic)
	}

	disconnected := make([]int, 0)
	for node := range g.adj {
		if len(g.adj[node]) == 0 {
			disconnected = append(disconnected, node)
		}
	}

	if !p.RemoveDisconnected && p.Size > 1 {
		for _, node := range disconnected {
			other := rng.Intn(p.Size - 1)
			if other >= node {
				other++
			}
			g.addEdgeUnchecked(node, other)
		}
	} else if p.RemoveDisconnected && len(disconnected) > 0 {
		g = withoutNodes(g, disconnected)
	}

	g.freeze("CartesianTopology")
	return g, nil
}

// connectionRadius solves expected degree = (size-1) * ballVolume(radius)
// for the radius, using the d-dimensional hypersphere volume. For two
// dimensions this reduces to sqrt(expected / (size-1) / pi).
func connectionRadius(size, expected, dimensions int) float64 {
	if size == 1 {
		return 1
	}
	if expected == 0 {
		return 0
	}
	d := float64(dimensions)
	unitBall := math.Pow(math.Pi, d/2) / math.Gamma(d/2+1)
	return math.Pow(float64(expected)/float64(size-1)/unitBall, 1/d)
}

// connectWithinRadius buckets nodes into bins of side radius so that only
// the 3^d block of bins around a node has to be checked, instead of all
// pairs.
func connectWithinRadius(g *Graph, radius float64, periodic bool) {
	numBins := int(math.Ceil(1 / radius))
	if numBins < 1 {
		numBins = 1
	}
	dims := g.dimensions

	bins := make(map[string][]int)
	binIndex := make([][]int, g.Size())
	for node, coords := range g.coords {
		idx := make([]int, dims)
		for d, c := range coords {
			b := int(math.Floor(c / radius))
			if b >= numBins {
				b = numBins - 1
			}
			idx[d] = b
		}
		binIndex[node] = idx
		key := binKey(idx)
		bins[key] = append(bins[key], node)
	}

	offsets := binOffsets(dims)
	for node := range g.coords {
		for _, offset := range offsets {
			candidate := make([]int, dims)
			outside := false
			for d := range offset {
				c := binIndex[node][d] + offset[d]
				if c < 0 || c >= numBins {
					if !periodic {
						outside = true
						break
					}
					c = ((c % numBins) + numBins) % numBins
				}
				candidate[d] = c
			}
			if outside {
				continue
			}
			for _, other := range bins[binKey(candidate)] {
				if other <= node {
					continue
				}
				dist, err := geometry.EuclideanDistance(g.coords[node], g.coords[other], periodic)
				if err == nil && dist < radius {
					g.addEdgeUnchecked(node, other)
				}
			}
		}
	}
}

func binKey(idx []int) string {
	key := ""
	for _, i := range idx {
		key += fmt.Sprintf("%d,", i)
	}
	return key
}

// binOffsets enumerates {-1,0,1}^d.
func binOffsets(dims int) [][]int {
	offsets := [][]int{{}}
	for d := 0; d < dims; d++ {
		next := make([][]int, 0, len(offsets)*3)
		for _, prefix := range offsets {
			for _, v := range []int{-1, 0, 1} {
				extended := append(append([]int{}, prefix...), v)
				next = append(next, extended)
			}
		}
		offsets = next
	}
	return offsets
}

// withoutNodes rebuilds the graph with the listed nodes removed, relabeling
// the survivors contiguously in their original order.
func withoutNodes(g *Graph, remove []int) *Graph {
	drop := make(map[int]struct{}, len(remove))
	for _, node := range remove {
		drop[node] = struct{}{}
	}

	relabel := make(map[int]int, g.Size()-len(drop))
	out := NewGraph(g.dimensions, g.periodic)
	for node := range g.coords {
		if _, gone := drop[node]; gone {
			continue
		}
		relabel[node] = out.addNodeUnchecked(g.coords[node])
	}
	for node := range g.adj {
		from, kept := relabel[node]
		if !kept {
			continue
		}
		for n := range g.adj[node] {
			if to, kept := relabel[n]; kept && from < to {
				out.addEdgeUnchecked(from, to)
			}
		}
	}
	return out
}
