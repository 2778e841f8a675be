package cell

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownType = errors.New("cell type not registered")
	ErrTypeExists  = errors.New("cell type already registered")
)

// Factory binds a cell variant to an environment, reading the variant's
// parameters from its configuration section once.
type Factory func(env *Environment) (*Prototype, error)

var registry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: make(map[string]Factory),
}

// Register adds a cell variant under the given name. Registering a
// duplicate name is an error.
func Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("cell name is required")
	}
	if factory == nil {
		return errors.New("cell factory is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrTypeExists, name)
	}
	registry.m[name] = factory
	return nil
}

// NewPrototype resolves the named variant and binds it to the
// environment.
func NewPrototype(name string, env *Environment) (*Prototype, error) {
	registry.mu.RLock()
	factory, ok := registry.m[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return factory(env)
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
