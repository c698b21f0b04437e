package gen

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/OCharnyshevich/orbis/pkg/key"
)

// Registry maps provider ids to factories, one table per Kind.
//
// A Registry is filled during start-up and then frozen. Once frozen the
// tables are read-only and lookups take no lock; before that they serialize
// with registration.
type Registry struct {
	mu           sync.Mutex
	frozen       atomic.Bool
	terrains     map[key.Key]TerrainFactory
	distributors map[key.Key]DistributorFactory
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{
		terrains:     make(map[key.Key]TerrainFactory),
		distributors: make(map[key.Key]DistributorFactory),
	}
}

// RegisterTerrain binds id to f.
func (r *Registry) RegisterTerrain(id key.Key, f TerrainFactory) error {
	if f == nil {
		return fmt.Errorf("register terrain %s: nil factory", id)
	}
	return r.register(KindTerrain, id, func() bool {
		if _, ok := r.terrains[id]; ok {
			return false
		}
		r.terrains[id] = f
		return true
	})
}

// RegisterDistributor binds id to f.
func (r *Registry) RegisterDistributor(id key.Key, f DistributorFactory) error {
	if f == nil {
		return fmt.Errorf("register distributor %s: nil factory", id)
	}
	return r.register(KindDistributor, id, func() bool {
		if _, ok := r.distributors[id]; ok {
			return false
		}
		r.distributors[id] = f
		return true
	})
}

// Register binds id to a factory of the given kind. factory must be a
// TerrainFactory or DistributorFactory matching kind.
func (r *Registry) Register(kind Kind, id key.Key, factory any) error {
	switch f := factory.(type) {
	case TerrainFactory:
		if kind == KindTerrain {
			return r.RegisterTerrain(id, f)
		}
	case func(Binding) Terrain:
		if kind == KindTerrain {
			return r.RegisterTerrain(id, f)
		}
	case DistributorFactory:
		if kind == KindDistributor {
			return r.RegisterDistributor(id, f)
		}
	case func(Binding) Distributor:
		if kind == KindDistributor {
			return r.RegisterDistributor(id, f)
		}
	}
	return fmt.Errorf("register %s %s: unsupported factory %T", kind, id, factory)
}

// MustRegisterTerrain panics on failure. A duplicate id is a start-up defect.
func (r *Registry) MustRegisterTerrain(id key.Key, f TerrainFactory) {
	if err := r.RegisterTerrain(id, f); err != nil {
		panic(err)
	}
}

// MustRegisterDistributor panics on failure.
func (r *Registry) MustRegisterDistributor(id key.Key, f DistributorFactory) {
	if err := r.RegisterDistributor(id, f); err != nil {
		panic(err)
	}
}

func (r *Registry) register(kind Kind, id key.Key, put func() bool) error {
	if err := id.Validate(); err != nil {
		return fmt.Errorf("register %s %q: %w", kind, id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return fmt.Errorf("register %s %s: %w", kind, id, ErrRegistryFrozen)
	}
	if !put() {
		return fmt.Errorf("register %s %s: %w", kind, id, ErrDuplicateRegistration)
	}
	return nil
}

// Freeze publishes the registry. Later registrations fail.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// lockUnfrozen takes the registration lock while the registry is still
// open and returns the matching unlock.
func (r *Registry) lockUnfrozen() func() {
	if r.frozen.Load() {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// Terrain resolves a terrain factory.
func (r *Registry) Terrain(id key.Key) (TerrainFactory, error) {
	defer r.lockUnfrozen()()
	f, ok := r.terrains[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownProvider, KindTerrain, id)
	}
	return f, nil
}

// Distributor resolves a distributor factory.
func (r *Registry) Distributor(id key.Key) (DistributorFactory, error) {
	defer r.lockUnfrozen()()
	f, ok := r.distributors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownProvider, KindDistributor, id)
	}
	return f, nil
}

// IDs lists the ids registered for kind, sorted.
func (r *Registry) IDs(kind Kind) []key.Key {
	unlock := r.lockUnfrozen()
	var ids []key.Key
	switch kind {
	case KindTerrain:
		for id := range r.terrains {
			ids = append(ids, id)
		}
	case KindDistributor:
		for id := range r.distributors {
			ids = append(ids, id)
		}
	}
	unlock()
	slices.SortFunc(ids, func(a, b key.Key) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids
}
