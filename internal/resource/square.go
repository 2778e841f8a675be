package resource

import (
	"fmt"

	"github.com/briandconnelly/seeds/internal/config"
)

func init() {
	mustRegister("SquareResourceCell", newSquareCell)
}

// SquareCell drives the level with a square wave of epoch time: high for
// the first dutyCycle fraction of each period, low for the rest.
type SquareCell struct {
	node      int
	levels    []float64
	high      float64
	low       float64
	period    int
	dutyCycle float64
	offset    int
	epoch     func() int
}

func newSquareCell(cfg *config.Config, section string, node int, levels []float64, epoch func() int) (Cell, error) {
	high, err := cfg.GetFloat(section, "high", 0)
	if err != nil {
		return nil, err
	}
	low, err := cfg.GetFloat(section, "low", 0)
	if err != nil {
		return nil, err
	}
	period, err := cfg.GetInt(section, "period", 1)
	if err != nil {
		return nil, err
	}
	dutyCycle, err := cfg.GetFloat(section, "duty_cycle", 0.5)
	if err != nil {
		return nil, err
	}
	offset, err := cfg.GetInt(section, "offset", 0)
	if err != nil {
		return nil, err
	}

	if period < 1 {
		return nil, fmt.Errorf("%w: SquareResourceCell period must be positive", config.ErrInvalidValue)
	}
	if dutyCycle < 0 || dutyCycle > 1 {
		return nil, fmt.Errorf("%w: SquareResourceCell duty_cycle must be in [0, 1]", config.ErrInvalidValue)
	}

	return &SquareCell{
		node:      node,
		levels:    levels,
		high:      high,
		low:       low,
		period:    period,
		dutyCycle: dutyCycle,
		offset:    offset,
		epoch:     epoch,
	}, nil
}

func (c *SquareCell) Node() int              { return c.node }
func (c *SquareCell) Level() float64         { return c.levels[c.node] }
func (c *SquareCell) SetLevel(level float64) { c.levels[c.node] = level }

func (c *SquareCell) Update(_ []Cell) error {
	position := float64(((c.epoch()-c.offset)%c.period+c.period)%c.period) / float64(c.period)
	if position < c.dutyCycle {
		c.SetLevel(c.high)
	} else {
		c.SetLevel(c.low)
	}
	return nil
}
