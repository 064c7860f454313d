package mapper

import (
	"errors"
	"fmt"
	"sync"

	"github.com/testbridge/testbridge/engine/core"
)

// ErrMapperNotFound is returned when no mapper is registered for a
// (system, entity type) pair.
var ErrMapperNotFound = errors.New("mapper not found")

// ErrRegistryFrozen is returned when registration is attempted after startup.
var ErrRegistryFrozen = errors.New("mapper registry is frozen")

// Registry is the process-wide lookup of mappers keyed by system and entity
// type. It is populated by plug-in registration calls at startup and frozen
// before serving; reads are lock-free once frozen.
type Registry struct {
	mu      sync.RWMutex
	frozen  bool
	mappers map[core.SystemName]map[core.EntityType]Mapper
}

func NewRegistry() *Registry {
	return &Registry{
		mappers: make(map[core.SystemName]map[core.EntityType]Mapper),
	}
}

// Register installs a mapper for the given system and entity type. It fails
// on duplicate registration and after Freeze.
func (r *Registry) Register(system core.SystemName, entity core.EntityType, m Mapper) error {
	if m == nil {
		return fmt.Errorf("cannot register nil mapper for %s/%s", system, entity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register %s/%s: %w", system, entity, ErrRegistryFrozen)
	}
	byEntity, ok := r.mappers[system]
	if !ok {
		byEntity = make(map[core.EntityType]Mapper)
		r.mappers[system] = byEntity
	}
	if _, exists := byEntity[entity]; exists {
		return fmt.Errorf("mapper already registered for %s/%s", system, entity)
	}
	byEntity[entity] = m
	return nil
}

// Freeze marks initialization as complete. Further Register calls fail.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Get resolves the mapper for a (system, entity type) pair.
func (r *Registry) Get(system core.SystemName, entity core.EntityType) (Mapper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if byEntity, ok := r.mappers[system]; ok {
		if m, ok := byEntity[entity]; ok {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrMapperNotFound, system, entity)
}

// Systems lists the systems with at least one registered mapper.
func (r *Registry) Systems() []core.SystemName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SystemName, 0, len(r.mappers))
	for s := range r.mappers {
		out = append(out, s)
	}
	return out
}
