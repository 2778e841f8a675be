package resource

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/briandconnelly/seeds/internal/config"
)

var (
	ErrUnknownType = errors.New("resource cell type not registered")
	ErrTypeExists  = errors.New("resource cell type already registered")
)

// Factory builds the cell for one node of a resource. The levels slice is
// the resource's shared mirror; the epoch callback reads the experiment
// clock for waveform variants.
type Factory func(cfg *config.Config, section string, node int, levels []float64, epoch func() int) (Cell, error)

var registry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: make(map[string]Factory),
}

// Register adds a resource cell variant under the given name. Registering
// a duplicate name is an error.
func Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("resource cell name is required")
	}
	if factory == nil {
		return errors.New("resource cell factory is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrTypeExists, name)
	}
	registry.m[name] = factory
	return nil
}

func newCell(name string, cfg *config.Config, section string, node int, levels []float64, epoch func() int) (Cell, error) {
	registry.mu.RLock()
	factory, ok := registry.m[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return factory(cfg, section, node, levels, epoch)
}

// List returns the registered variant names in sorted order.
func List() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}
