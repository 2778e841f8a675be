package topology

import (
	"fmt"
	"math/rand"

	"github.com/briandconnelly/seeds/internal/config"
	"github.com/briandconnelly/seeds/internal/sampling"
)

func init() {
	mustRegister("WellMixedTopology", newWellMixedFromConfig)
}

// WellMixedParams configures a topology with no persisted edges: every
// neighbor query returns a fresh uniform sample of NumInteractions nodes.
// Node coordinates are random and exist only for visualization.
type WellMixedParams struct {
	Size            int
	NumInteractions int
	Dimensions      int
}

// WellMixed is the well-mixed topology. Neighbor sets are resampled on
// every call, so they must not be cached; the focal node is excluded from
// its own neighbor sample.
type WellMixed struct {
	*Graph
	numInteractions int
	rng             *rand.Rand
}

func newWellMixedFromConfig(cfg *config.Config, section string, rng *rand.Rand) (Topology, error) {
	size, err := cfg.RequireInt(section, "size")
	if err != nil {
		return nil, err
	}
	numInteractions, err := cfg.GetInt(section, "num_interactions", size)
	if err != nil {
		return nil, err
	}
	dimensions, err := cfg.GetInt(section, "dimensions", 2)
	if err != nil {
		return nil, err
	}

	return NewWellMixed(WellMixedParams{
		Size:            size,
		NumInteractions: numInteractions,
		Dimensions:      dimensions,
	}, rng)
}

// NewWellMixed builds a well-mixed topology. NumInteractions defaults to
// the node count and is capped at size-1 since the focal node is excluded
// from its own samples.
func NewWellMixed(p WellMixedParams, rng *rand.Rand) (*WellMixed, error) {
	if p.Size < 1 {
		return nil, fmt.Errorf("%w: WellMixedTopology size must be positive", config.ErrInvalidValue)
	}
	if p.NumInteractions < 0 {
		return nil, fmt.Errorf("%w: WellMixedTopology num_interactions must be non-negative", config.ErrInvalidValue)
	}
	if p.NumInteractions > p.Size {
		return nil, fmt.Errorf("%w: WellMixedTopology num_interactions can not exceed size", config.ErrInvalidValue)
	}
	if p.Dimensions < 1 {
		return nil, fmt.Errorf("%w: WellMixedTopology dimensions must be at least 1", config.ErrInvalidValue)
	}

	g := NewGraph(p.Dimensions, false)
	for i := 0; i < p.Size; i++ {
		coords := make([]float64, p.Dimensions)
		for d := range coords {
			coords[d] = rng.Float64()
		}
		g.addNodeUnchecked(coords)
	}
	g.freeze("WellMixedTopology")

	numInteractions := p.NumInteractions
	if numInteractions > p.Size-1 {
		numInteractions = p.Size - 1
	}

	return &WellMixed{
		Graph:           g,
		numInteractions: numInteractions,
		rng:             rng,
	}, nil
}

// Neighbors returns a fresh uniform sample, without replacement, of
// numInteractions nodes other than the focal node.
func (w *WellMixed) Neighbors(node int) ([]int, error) {
	if node < 0 || node >= w.Size() {
		return nil, fmt.Errorf("%w: %d", ErrNonexistentNode, node)
	}
	if w.numInteractions == 0 {
		return nil, nil
	}

	picked, err := sampling.WithoutReplacement(w.rng, w.Size()-1, w.numInteractions)
	if err != nil {
		return nil, err
	}
	for i, p := range picked {
		if p >= node {
			picked[i] = p + 1
		}
	}
	return picked, nil
}

// Static is false: neighbor sets are resampled on every query.
func (w *WellMixed) Static() bool { return false }
