package adapter

import (
	"fmt"
	"sync"

	"github.com/testbridge/testbridge/engine/core"
)

// Registry holds the installed adapters, keyed by system name.
type Registry struct {
	mu       sync.RWMutex
	adapters map[core.SystemName]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[core.SystemName]Adapter)}
}

func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := a.System()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("adapter for %s already registered", name)
	}
	r.adapters[name] = a
	return nil
}

func (r *Registry) Get(system core.SystemName) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[system]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, system)
	}
	return a, nil
}

// Systems lists the registered system names.
func (r *Registry) Systems() []core.SystemName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SystemName, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	return out
}
