package topology

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/briandconnelly/seeds/internal/config"
)

var (
	ErrUnknownType = errors.New("topology type not registered")
	ErrTypeExists  = errors.New("topology type already registered")
)

// Factory builds a topology from the parameters in the given configuration
// section. Stochastic construction (random-geometric placement, well-mixed
// sampling) draws from the supplied random source.
type Factory func(cfg *config.Config, section string, rng *rand.Rand) (Topology, error)

var registry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: make(map[string]Factory),
}

// Register adds a topology variant under the given name. Registering a
// duplicate name is an error.
func Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("topology name is required")
	}
	if factory == nil {
		return errors.New("topology factory is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrTypeExists, name)
	}
	registry.m[name] = factory
	return nil
}

// New constructs the named topology variant, reading its parameters from
// the given configuration section.
func New(name string, cfg *config.Config, section string, rng *rand.Rand) (Topology, error) {
	registry.mu.RLock()
	factory, ok := registry.m[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return factory(cfg, section, rng)
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
