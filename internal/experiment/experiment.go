// Package experiment drives a simulation run: it owns the populations
// and resources described by a configuration, advances them epoch by
// epoch from a single seeded random stream, and exposes the aggregates
// that reporting and persistence read between epochs.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/briandconnelly/seeds/internal/config"
	"github.com/briandconnelly/seeds/internal/model"
	"github.com/briandconnelly/seeds/internal/resource"
)

var (
	ErrStopped      = errors.New("experiment already stopped")
	ErrNoPopulation = errors.New("no population section configured")
)

// Experiment is one simulation run. The epoch counter only increases,
// and the proceed flag goes false exactly once: when the epoch budget is
// reached or End is called.
type Experiment struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	epoch   int
	epochs  int
	proceed bool

	populations []*Population
	resources   *resource.Manager
}

// New builds an experiment from a configuration and a seed. Populations
// come from the "Population" section plus any "Population:<name>"
// sections; resources from "Resource:<name>" sections. The epoch budget
// is Experiment.epochs (0 means no budget, the run continues until End
// or context cancellation).
func New(cfg *config.Config, seed int64) (*Experiment, error) {
	epochs, err := cfg.GetInt("Experiment", "epochs", 0)
	if err != nil {
		return nil, err
	}
	if epochs < 0 {
		return nil, fmt.Errorf("%w: Experiment epochs can not be negative", config.ErrInvalidValue)
	}

	e := &Experiment{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		seed:    seed,
		epochs:  epochs,
		proceed: true,
	}

	e.resources, err = resource.NewManager(cfg, e.rng, e.Epoch)
	if err != nil {
		return nil, err
	}

	for _, section := range cfg.Sections() {
		if section != "Population" && !strings.HasPrefix(section, "Population:") {
			continue
		}
		p, err := NewPopulation(cfg, section, e.rng, e.resources)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", section, err)
		}
		e.populations = append(e.populations, p)
	}
	if len(e.populations) == 0 {
		return nil, ErrNoPopulation
	}
	return e, nil
}

func (e *Experiment) Seed() int64                { return e.seed }
func (e *Experiment) Epoch() int                 { return e.epoch }
func (e *Experiment) Proceed() bool              { return e.proceed }
func (e *Experiment) Populations() []*Population { return e.populations }
func (e *Experiment) Resources() *resource.Manager {
	return e.resources
}

// End stops the run. The flag only ever goes from true to false.
func (e *Experiment) End() { e.proceed = false }

// Update advances the run one epoch: resources first, then populations,
// then the epoch counter. Observers only ever see post-epoch state.
func (e *Experiment) Update() error {
	if !e.proceed {
		return ErrStopped
	}

	if err := e.resources.Update(e.rng); err != nil {
		return err
	}
	for _, p := range e.populations {
		if err := p.Update(); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}

	e.epoch++
	if e.epochs > 0 && e.epoch >= e.epochs {
		e.proceed = false
	}
	return nil
}

// Run advances epochs until the budget is exhausted, End is called, or
// the context is cancelled. Cancellation is only observed between
// epochs; an epoch is never interrupted midway.
func (e *Experiment) Run(ctx context.Context) error {
	for e.proceed {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := e.Update(); err != nil {
			return err
		}
	}
	return nil
}

// EpochRecords snapshots the just-completed epoch as persistable
// records: one census and transition matrix per population, one stats
// row per resource.
func (e *Experiment) EpochRecords(runID string) ([]model.Census, []model.Transitions, []model.ResourceStats) {
	epoch := e.epoch
	censuses := make([]model.Census, 0, len(e.populations))
	transitions := make([]model.Transitions, 0, len(e.populations))
	for _, p := range e.populations {
		censuses = append(censuses, model.Census{
			RunID:             runID,
			Population:        p.Name(),
			Epoch:             epoch,
			TypeCount:         p.Census(),
			DegenerateUpdates: p.DegenerateUpdates(),
		})
		transitions = append(transitions, model.Transitions{
			RunID:      runID,
			Population: p.Name(),
			Epoch:      epoch,
			Types:      len(p.TypeNames()),
			Counts:     p.Transitions(),
		})
	}

	var resourceStats []model.ResourceStats
	for _, name := range e.resources.Names() {
		r, err := e.resources.Get(name)
		if err != nil {
			continue
		}
		mean, stddev, min, max := r.Stats()
		resourceStats = append(resourceStats, model.ResourceStats{
			RunID:    runID,
			Resource: name,
			Epoch:    epoch,
			Mean:     mean,
			StdDev:   stddev,
			Min:      min,
			Max:      max,
		})
	}
	return censuses, transitions, resourceStats
}
