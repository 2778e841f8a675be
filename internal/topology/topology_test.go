package topology

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/briandconnelly/seeds/internal/config"
)

func TestGraphMutation(t *testing.T) {
	g := NewGraph(2, false)

	a, err := g.AddNode([]float64{0.1, 0.1}, nil)
	if err != nil {
		t.Fatalf("add node: %v", err)
	}
	b, err := g.AddNode([]float64{0.2, 0.2}, []int{a})
	if err != nil {
		t.Fatalf("add node: %v", err)
	}

	neighbors, err := g.Neighbors(a)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0] != b {
		t.Fatalf("expected [%d], got %v", b, neighbors)
	}

	if err := g.RemoveEdge(a, b); err != nil {
		t.Fatalf("remove edge: %v", err)
	}
	if err := g.RemoveEdge(a, b); !errors.Is(err, ErrNonexistentEdge) {
		t.Fatalf("expected ErrNonexistentEdge, got %v", err)
	}

	if err := g.RemoveNode(b); err != nil {
		t.Fatalf("remove node: %v", err)
	}
	if g.Size() != 1 {
		t.Fatalf("expected 1 node, got %d", g.Size())
	}
}

func TestGraphRemoveNodeRelabelsDense(t *testing.T) {
	g := NewGraph(1, false)
	for i := 0; i < 4; i++ {
		if _, err := g.AddNode([]float64{float64(i)}, nil); err != nil {
			t.Fatalf("add node: %v", err)
		}
	}
	if err := g.AddEdge(2, 3); err != nil {
		t.Fatalf("add edge: %v", err)
	}

	if err := g.RemoveNode(1); err != nil {
		t.Fatalf("remove node: %v", err)
	}
	if g.Size() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.Size())
	}
	// node 3 was relabeled into slot 1; its edge to 2 must survive
	neighbors, err := g.Neighbors(2)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0] != 1 {
		t.Fatalf("expected relabeled neighbor [1], got %v", neighbors)
	}
}

func TestAddNodeDimensionMismatch(t *testing.T) {
	g := NewGraph(2, false)
	if _, err := g.AddNode([]float64{0.5}, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func mooreNeighborCount(t *testing.T, g Topology, row, col, size int) int {
	t.Helper()
	neighbors, err := g.Neighbors(row*size + col)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	return len(neighbors)
}

func TestMooreNeighborCounts(t *testing.T) {
	const size = 5
	g, err := NewMoore(LatticeParams{Size: size, Radius: 1})
	if err != nil {
		t.Fatalf("moore: %v", err)
	}

	if n := mooreNeighborCount(t, g, 0, 0, size); n != 3 {
		t.Fatalf("corner: expected 3 neighbors, got %d", n)
	}
	if n := mooreNeighborCount(t, g, 0, 2, size); n != 5 {
		t.Fatalf("edge: expected 5 neighbors, got %d", n)
	}
	if n := mooreNeighborCount(t, g, 2, 2, size); n != 8 {
		t.Fatalf("interior: expected 8 neighbors, got %d", n)
	}
}

func TestMoorePeriodicUniformDegree(t *testing.T) {
	const size = 5
	g, err := NewMoore(LatticeParams{Size: size, Radius: 1, Periodic: true})
	if err != nil {
		t.Fatalf("moore: %v", err)
	}
	for node := 0; node < size*size; node++ {
		neighbors, err := g.Neighbors(node)
		if err != nil {
			t.Fatalf("neighbors: %v", err)
		}
		if len(neighbors) != 8 {
			t.Fatalf("node %d: expected 8 neighbors, got %d", node, len(neighbors))
		}
	}
}

func TestMooreRadiusTwoInterior(t *testing.T) {
	g, err := NewMoore(LatticeParams{Size: 7, Radius: 2})
	if err != nil {
		t.Fatalf("moore: %v", err)
	}
	if n := mooreNeighborCount(t, g, 3, 3, 7); n != 24 {
		t.Fatalf("expected 24 neighbors at radius 2, got %d", n)
	}
}

func TestVonNeumannNeighborCounts(t *testing.T) {
	const size = 5
	g, err := NewVonNeumann(LatticeParams{Size: size, Radius: 1})
	if err != nil {
		t.Fatalf("vonneumann: %v", err)
	}

	if n := mooreNeighborCount(t, g, 0, 0, size); n != 2 {
		t.Fatalf("corner: expected 2 neighbors, got %d", n)
	}
	if n := mooreNeighborCount(t, g, 0, 2, size); n != 3 {
		t.Fatalf("edge: expected 3 neighbors, got %d", n)
	}
	if n := mooreNeighborCount(t, g, 2, 2, size); n != 4 {
		t.Fatalf("interior: expected 4 neighbors, got %d", n)
	}

	periodic, err := NewVonNeumann(LatticeParams{Size: size, Radius: 1, Periodic: true})
	if err != nil {
		t.Fatalf("vonneumann: %v", err)
	}
	for node := 0; node < size*size; node++ {
		neighbors, err := periodic.Neighbors(node)
		if err != nil {
			t.Fatalf("neighbors: %v", err)
		}
		if len(neighbors) != 4 {
			t.Fatalf("node %d: expected 4 neighbors, got %d", node, len(neighbors))
		}
	}
}

func TestVonNeumannRadiusTwoInterior(t *testing.T) {
	g, err := NewVonNeumann(LatticeParams{Size: 7, Radius: 2})
	if err != nil {
		t.Fatalf("vonneumann: %v", err)
	}
	if n := mooreNeighborCount(t, g, 3, 3, 7); n != 12 {
		t.Fatalf("expected 12 neighbors at radius 2, got %d", n)
	}
}

func TestLatticeRadiusMustBeSmallerThanSize(t *testing.T) {
	if _, err := NewMoore(LatticeParams{Size: 3, Radius: 3}); !errors.Is(err, config.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := NewVonNeumann(LatticeParams{Size: 3, Radius: 3}); !errors.Is(err, config.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestLatticeRejectsStructuralMutation(t *testing.T) {
	g, err := NewMoore(LatticeParams{Size: 3, Radius: 1})
	if err != nil {
		t.Fatalf("moore: %v", err)
	}

	if _, err := g.AddNode(nil, nil); !errors.Is(err, ErrStructuralMutation) {
		t.Fatalf("expected ErrStructuralMutation, got %v", err)
	}
	if err := g.RemoveNode(0); !errors.Is(err, ErrStructuralMutation) {
		t.Fatalf("expected ErrStructuralMutation, got %v", err)
	}
	if err := g.AddEdge(0, 4); !errors.Is(err, ErrStructuralMutation) {
		t.Fatalf("expected ErrStructuralMutation, got %v", err)
	}
	if err := g.RemoveEdge(0, 1); !errors.Is(err, ErrStructuralMutation) {
		t.Fatalf("expected ErrStructuralMutation, got %v", err)
	}
}

func TestCartesianExpectedDegree(t *testing.T) {
	if testing.Short() {
		t.Skip("large topology")
	}

	const (
		size     = 10000
		expected = 20
	)
	rng := rand.New(rand.NewSource(2021))
	g, err := NewCartesian(CartesianParams{
		Size:               size,
		ExpectedNeighbors:  expected,
		Dimensions:         2,
		RemoveDisconnected: true,
	}, rng)
	if err != nil {
		t.Fatalf("cartesian: %v", err)
	}

	total := 0
	for node := 0; node < g.Size(); node++ {
		degree, err := g.Degree(node)
		if err != nil {
			t.Fatalf("degree: %v", err)
		}
		total += degree
	}
	mean := float64(total) / float64(g.Size())

	// boundary effects shave a little off the expectation
	if mean < float64(expected)*0.8 || mean > float64(expected)*1.2 {
		t.Fatalf("mean degree %f outside [%f, %f]", mean, float64(expected)*0.8, float64(expected)*1.2)
	}
}

func TestCartesianRemoveDisconnected(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g, err := NewCartesian(CartesianParams{
		Size:               300,
		ExpectedNeighbors:  1,
		Dimensions:         2,
		RemoveDisconnected: true,
	}, rng)
	if err != nil {
		t.Fatalf("cartesian: %v", err)
	}
	if g.Size() > 300 {
		t.Fatalf("size grew: %d", g.Size())
	}
	for node := 0; node < g.Size(); node++ {
		degree, err := g.Degree(node)
		if err != nil {
			t.Fatalf("degree for node %d: %v", node, err)
		}
		if degree == 0 {
			t.Fatalf("node %d still disconnected", node)
		}
	}
}

func TestCartesianForceConnect(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g, err := NewCartesian(CartesianParams{
		Size:               300,
		ExpectedNeighbors:  1,
		Dimensions:         2,
		RemoveDisconnected: false,
	}, rng)
	if err != nil {
		t.Fatalf("cartesian: %v", err)
	}
	if g.Size() != 300 {
		t.Fatalf("expected all 300 nodes kept, got %d", g.Size())
	}
	for node := 0; node < g.Size(); node++ {
		degree, err := g.Degree(node)
		if err != nil {
			t.Fatalf("degree: %v", err)
		}
		if degree == 0 {
			t.Fatalf("node %d left disconnected", node)
		}
	}
}

func TestWellMixedNeighbors(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	w, err := NewWellMixed(WellMixedParams{Size: 50, NumInteractions: 10, Dimensions: 2}, rng)
	if err != nil {
		t.Fatalf("wellmixed: %v", err)
	}

	if w.Static() {
		t.Fatal("well-mixed topology must not report static neighbors")
	}

	for trial := 0; trial < 20; trial++ {
		neighbors, err := w.Neighbors(7)
		if err != nil {
			t.Fatalf("neighbors: %v", err)
		}
		if len(neighbors) != 10 {
			t.Fatalf("expected 10 neighbors, got %d", len(neighbors))
		}
		seen := make(map[int]struct{})
		for _, n := range neighbors {
			if n == 7 {
				t.Fatal("focal node sampled as its own neighbor")
			}
			if n < 0 || n >= 50 {
				t.Fatalf("neighbor %d out of range", n)
			}
			if _, dup := seen[n]; dup {
				t.Fatalf("duplicate neighbor %d", n)
			}
			seen[n] = struct{}{}
		}
	}
}

func TestWellMixedNeighborsResampled(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	w, err := NewWellMixed(WellMixedParams{Size: 100, NumInteractions: 5, Dimensions: 2}, rng)
	if err != nil {
		t.Fatalf("wellmixed: %v", err)
	}

	first, err := w.Neighbors(0)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	for trial := 0; trial < 50; trial++ {
		next, err := w.Neighbors(0)
		if err != nil {
			t.Fatalf("neighbors: %v", err)
		}
		if !equalInts(first, next) {
			return
		}
	}
	t.Fatal("neighbor samples never changed across 50 queries")
}

func TestWellMixedDefaultInteractionsCapped(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	w, err := NewWellMixed(WellMixedParams{Size: 10, NumInteractions: 10, Dimensions: 2}, rng)
	if err != nil {
		t.Fatalf("wellmixed: %v", err)
	}
	neighbors, err := w.Neighbors(3)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if len(neighbors) != 9 {
		t.Fatalf("expected 9 neighbors (self excluded), got %d", len(neighbors))
	}
}

func TestNearestNodeOnLattice(t *testing.T) {
	const size = 4
	g, err := NewMoore(LatticeParams{Size: size, Radius: 1})
	if err != nil {
		t.Fatalf("moore: %v", err)
	}

	// node coords are (row/size, col/size); a point just past (0.25, 0.5)
	// is nearest to row 1, col 2
	node, err := g.NearestNode([]float64{0.26, 0.51})
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if node != 1*size+2 {
		t.Fatalf("expected node %d, got %d", 1*size+2, node)
	}
}

func TestRegistryResolvesVariants(t *testing.T) {
	for _, name := range []string{"CartesianTopology", "MooreTopology", "VonNeumannTopology", "WellMixedTopology"} {
		found := false
		for _, registered := range List() {
			if registered == name {
				found = true
			}
		}
		if !found {
			t.Fatalf("variant %s not registered", name)
		}
	}
}

func TestRegistryUnknownType(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := New("KleinBottleTopology", nil, "KleinBottleTopology", rng); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
