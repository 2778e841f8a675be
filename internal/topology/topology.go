// Package topology models the spatial structure of a population or
// resource: a graph of densely-numbered nodes carrying coordinates in the
// unit hypercube, with an undirected adjacency relation. Concrete variants
// (random-geometric, Moore and von Neumann lattices, well-mixed) are
// resolved by name through the package registry.
package topology

import (
	"errors"
	"fmt"
	"sort"

	"github.com/briandconnelly/seeds/internal/geometry"
)

var (
	ErrStructuralMutation = errors.New("topology does not support structural mutation")
	ErrNonexistentNode    = errors.New("node does not exist")
	ErrNonexistentEdge    = errors.New("edge does not exist")
	ErrDimensionMismatch  = errors.New("coordinate dimensions do not match topology")
)

// Topology answers neighbor, coordinate, and distance queries for a set of
// nodes with dense integer IDs in [0, Size()).
type Topology interface {
	// Kind returns the variant name the topology was registered under.
	Kind() string
	Size() int
	Dimensions() int
	Periodic() bool
	// Coords returns the node's coordinate tuple (length Dimensions).
	Coords(node int) ([]float64, error)
	// Neighbors returns the IDs adjacent to the node. Well-mixed
	// topologies return a fresh random subsample on every call.
	Neighbors(node int) ([]int, error)
	// NodeDistance is the Minkowski distance (order per construction,
	// default Euclidean) between two nodes' coordinates, wrapping on the
	// unit torus when the topology is periodic.
	NodeDistance(a, b int) (float64, error)
	// NearestNode returns the node closest to the given point.
	NearestNode(coords []float64) (int, error)
	// Static reports whether neighbor sets are fixed between structural
	// mutations, and therefore safe to cache.
	Static() bool

	AddNode(coords []float64, neighbors []int) (int, error)
	RemoveNode(node int) error
	AddEdge(a, b int) error
	RemoveEdge(a, b int) error
}

// Graph is the adjacency-list topology underlying every variant. A Graph
// constructed with NewGraph supports structural mutation; the derived
// variants freeze it after construction.
type Graph struct {
	kind       string
	dimensions int
	periodic   bool
	order      float64
	mutable    bool

	coords [][]float64
	adj    []map[int]struct{}
}

// NewGraph returns an empty mutable graph topology.
func NewGraph(dimensions int, periodic bool) *Graph {
	return &Graph{
		kind:       "Graph",
		dimensions: dimensions,
		periodic:   periodic,
		order:      2,
		mutable:    true,
	}
}

func (g *Graph) Kind() string    { return g.kind }
func (g *Graph) Size() int       { return len(g.coords) }
func (g *Graph) Dimensions() int { return g.dimensions }
func (g *Graph) Periodic() bool  { return g.periodic }
func (g *Graph) Static() bool    { return true }

// Nodes returns all node IDs in ascending order.
func (g *Graph) Nodes() []int {
	nodes := make([]int, len(g.coords))
	for i := range nodes {
		nodes[i] = i
	}
	return nodes
}

func (g *Graph) valid(node int) bool {
	return node >= 0 && node < len(g.coords)
}

func (g *Graph) Coords(node int) ([]float64, error) {
	if !g.valid(node) {
		return nil, fmt.Errorf("%w: %d", ErrNonexistentNode, node)
	}
	return g.coords[node], nil
}

func (g *Graph) Neighbors(node int) ([]int, error) {
	if !g.valid(node) {
		return nil, fmt.Errorf("%w: %d", ErrNonexistentNode, node)
	}
	neighbors := make([]int, 0, len(g.adj[node]))
	for n := range g.adj[node] {
		neighbors = append(neighbors, n)
	}
	sort.Ints(neighbors)
	return neighbors, nil
}

// Degree returns the number of edges incident to the node.
func (g *Graph) Degree(node int) (int, error) {
	if !g.valid(node) {
		return 0, fmt.Errorf("%w: %d", ErrNonexistentNode, node)
	}
	return len(g.adj[node]), nil
}

func (g *Graph) NodeDistance(a, b int) (float64, error) {
	if !g.valid(a) {
		return 0, fmt.Errorf("%w: %d", ErrNonexistentNode, a)
	}
	if !g.valid(b) {
		return 0, fmt.Errorf("%w: %d", ErrNonexistentNode, b)
	}
	return geometry.MinkowskiDistance(g.coords[a], g.coords[b], g.order, g.periodic)
}

func (g *Graph) NearestNode(coords []float64) (int, error) {
	if len(coords) != g.dimensions {
		return 0, fmt.Errorf("%w: got %d coordinates, topology has %d dimensions",
			ErrDimensionMismatch, len(coords), g.dimensions)
	}
	if len(g.coords) == 0 {
		return 0, ErrNonexistentNode
	}

	best := 0
	bestDist, err := geometry.MinkowskiDistanceP(coords, g.coords[0], g.order, g.periodic)
	if err != nil {
		return 0, err
	}
	for node := 1; node < len(g.coords); node++ {
		d, err := geometry.MinkowskiDistanceP(coords, g.coords[node], g.order, g.periodic)
		if err != nil {
			return 0, err
		}
		if d < bestDist {
			best = node
			bestDist = d
		}
	}
	return best, nil
}

// AddNode appends a node with the given coordinates and connects it to the
// listed neighbors. Nil coordinates place the node at the origin.
func (g *Graph) AddNode(coords []float64, neighbors []int) (int, error) {
	if !g.mutable {
		return 0, fmt.Errorf("%w: %s", ErrStructuralMutation, g.kind)
	}
	if coords == nil {
		coords = make([]float64, g.dimensions)
	}
	if len(coords) != g.dimensions {
		return 0, fmt.Errorf("%w: got %d coordinates, topology has %d dimensions",
			ErrDimensionMismatch, len(coords), g.dimensions)
	}
	for _, n := range neighbors {
		if !g.valid(n) {
			return 0, fmt.Errorf("%w: %d", ErrNonexistentNode, n)
		}
	}

	id := len(g.coords)
	g.coords = append(g.coords, coords)
	g.adj = append(g.adj, make(map[int]struct{}))
	for _, n := range neighbors {
		g.adj[id][n] = struct{}{}
		g.adj[n][id] = struct{}{}
	}
	return id, nil
}

// RemoveNode deletes a node and its edges. The last node is relabeled into
// the removed slot so that IDs stay dense.
func (g *Graph) RemoveNode(node int) error {
	if !g.mutable {
		return fmt.Errorf("%w: %s", ErrStructuralMutation, g.kind)
	}
	if !g.valid(node) {
		return fmt.Errorf("%w: %d", ErrNonexistentNode, node)
	}

	for n := range g.adj[node] {
		delete(g.adj[n], node)
	}

	last := len(g.coords) - 1
	if node != last {
		g.coords[node] = g.coords[last]
		g.adj[node] = g.adj[last]
		for n := range g.adj[node] {
			delete(g.adj[n], last)
			g.adj[n][node] = struct{}{}
		}
	}
	g.coords = g.coords[:last]
	g.adj = g.adj[:last]
	return nil
}

func (g *Graph) AddEdge(a, b int) error {
	if !g.mutable {
		return fmt.Errorf("%w: %s", ErrStructuralMutation, g.kind)
	}
	if !g.valid(a) {
		return fmt.Errorf("%w: %d", ErrNonexistentNode, a)
	}
	if !g.valid(b) {
		return fmt.Errorf("%w: %d", ErrNonexistentNode, b)
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
	return nil
}

func (g *Graph) RemoveEdge(a, b int) error {
	if !g.mutable {
		return fmt.Errorf("%w: %s", ErrStructuralMutation, g.kind)
	}
	if !g.valid(a) {
		return fmt.Errorf("%w: %d", ErrNonexistentNode, a)
	}
	if !g.valid(b) {
		return fmt.Errorf("%w: %d", ErrNonexistentNode, b)
	}
	if _, ok := g.adj[a][b]; !ok {
		return fmt.Errorf("%w: %d-%d", ErrNonexistentEdge, a, b)
	}
	delete(g.adj[a], b)
	delete(g.adj[b], a)
	return nil
}

// addNodeUnchecked is used by variant builders before the graph is frozen.
func (g *Graph) addNodeUnchecked(coords []float64) int {
	id := len(g.coords)
	g.coords = append(g.coords, coords)
	g.adj = append(g.adj, make(map[int]struct{}))
	return id
}

func (g *Graph) addEdgeUnchecked(a, b int) {
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
}

// freeze marks the graph as structurally immutable and records the variant
// name used in mutation errors.
func (g *Graph) freeze(kind string) {
	g.kind = kind
	g.mutable = false
}
