package resource

import (
	"fmt"
	"math"

	"github.com/briandconnelly/seeds/internal/config"
)

func init() {
	mustRegister("SineResourceCell", newSineCell)
}

// SineCell drives the level with a sine wave of epoch time, oscillating
// in [0, 2*amplitude]. No randomness is involved.
type SineCell struct {
	node      int
	levels    []float64
	amplitude float64
	period    float64
	phase     float64
	epoch     func() int
}

func newSineCell(cfg *config.Config, section string, node int, levels []float64, epoch func() int) (Cell, error) {
	amplitude, err := cfg.GetFloat(section, "amplitude", 0)
	if err != nil {
		return nil, err
	}
	period, err := cfg.GetFloat(section, "period", 0)
	if err != nil {
		return nil, err
	}
	phase, err := cfg.GetFloat(section, "phase", 0)
	if err != nil {
		return nil, err
	}

	if amplitude < 0 {
		return nil, fmt.Errorf("%w: SineResourceCell amplitude can not be negative", config.ErrInvalidValue)
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w: SineResourceCell period must be positive", config.ErrInvalidValue)
	}

	return &SineCell{
		node:      node,
		levels:    levels,
		amplitude: amplitude,
		period:    period,
		phase:     phase,
		epoch:     epoch,
	}, nil
}

func (c *SineCell) Node() int              { return c.node }
func (c *SineCell) Level() float64         { return c.levels[c.node] }
func (c *SineCell) SetLevel(level float64) { c.levels[c.node] = level }

func (c *SineCell) Update(_ []Cell) error {
	position := (float64(c.epoch()) / c.period) * 2 * math.Pi
	shift := (c.phase / c.period) * 2 * math.Pi
	c.SetLevel(c.amplitude*math.Sin(position+shift) + c.amplitude)
	return nil
}
