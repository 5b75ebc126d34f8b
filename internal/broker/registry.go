package broker

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves connection factories by name.
//
// It plays the part of a naming directory: the connection properties name a
// factory and the registry hands back the implementation. A registry is
// normally filled once at startup and only read afterwards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ConnectionFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ConnectionFactory)}
}

// Register binds name to f, replacing any previous binding.
func (r *Registry) Register(name string, f ConnectionFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Lookup returns the factory bound to name.
func (r *Registry) Lookup(name string) (ConnectionFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %q", ErrFactoryNotFound, name)
	}
	return f, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
