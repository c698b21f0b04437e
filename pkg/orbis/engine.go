// Package orbis ties the generation packages together behind one Engine: a
// frozen provider registry, the pack manager, the data-file provisioner and
// the set of loaded worlds.
package orbis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/OCharnyshevich/orbis/pkg/datafile"
	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/gen/distributor"
	"github.com/OCharnyshevich/orbis/pkg/gen/terrain"
	"github.com/OCharnyshevich/orbis/pkg/noise"
	"github.com/OCharnyshevich/orbis/pkg/pack"
)

var (
	ErrWorldNotFound = errors.New("world not found")
	ErrWorldBound    = errors.New("world bound to another pack")
)

type options struct {
	register    []func(*gen.Registry) error
	dataURL     string
	indexPath   string
	scanWorkers int
}

// Option configures New.
type Option func(*options)

// WithProviders registers additional providers before the registry is frozen.
func WithProviders(register func(*gen.Registry) error) Option {
	return func(o *options) { o.register = append(o.register, register) }
}

// WithDataURL sets where missing data files are downloaded from.
func WithDataURL(url string) Option {
	return func(o *options) { o.dataURL = url }
}

// WithIndex records pack scans in a SQLite database at path.
func WithIndex(path string) Option {
	return func(o *options) { o.indexPath = path }
}

// WithScanWorkers bounds pack scan concurrency.
func WithScanWorkers(n int) Option {
	return func(o *options) { o.scanWorkers = n }
}

// Engine is the host-facing entry point. Build one with New.
type Engine struct {
	platform Platform
	log      *slog.Logger
	registry *gen.Registry
	codec    *gen.Codec
	noise    *noise.Cache
	packs    *pack.Manager
	index    *pack.Index
	data     *datafile.Provisioner

	mu     sync.RWMutex
	worlds map[string]*pack.Container
}

// New initializes the engine: it registers the built-in and optional
// providers, freezes the registry and scans the packs folder.
func New(ctx context.Context, p Platform, opts ...Option) (*Engine, error) {
	o := options{scanWorkers: pack.DefaultScanWorkers}
	for _, opt := range opts {
		opt(&o)
	}
	log := p.Logger()

	registry := gen.NewRegistry()
	register := append([]func(*gen.Registry) error{terrain.Register, distributor.Register}, o.register...)
	for _, r := range register {
		if err := r(registry); err != nil {
			return nil, fmt.Errorf("register providers: %w", err)
		}
	}
	registry.Freeze()

	nc := &noise.Cache{}
	e := &Engine{
		platform: p,
		log:      log,
		registry: registry,
		codec:    gen.NewCodec(registry, gen.WithLogger(log), gen.WithNoiseCache(nc)),
		noise:    nc,
		data:     datafile.New(p.Directory(), o.dataURL, p.Adaptation(), log),
		worlds:   make(map[string]*pack.Container),
	}

	mopts := []pack.ManagerOption{pack.WithScanWorkers(o.scanWorkers)}
	if o.indexPath != "" {
		idx, err := pack.OpenIndex(o.indexPath)
		if err != nil {
			return nil, err
		}
		e.index = idx
		mopts = append(mopts, pack.WithIndex(idx))
	}
	e.packs = pack.NewManager(filepath.Join(p.Directory(), "packs"), e.codec, log, mopts...)
	if err := e.packs.Scan(ctx); err != nil {
		e.closeIndex()
		return nil, err
	}

	log.Info("orbis initialized", "adaptation", p.Adaptation(), "directory", p.Directory(),
		"terrains", len(registry.IDs(gen.KindTerrain)), "distributors", len(registry.IDs(gen.KindDistributor)),
		"packs", len(e.packs.Packs()))
	return e, nil
}

func (e *Engine) Platform() Platform { return e.platform }
func (e *Engine) Registry() *gen.Registry { return e.registry }
func (e *Engine) Codec() *gen.Codec { return e.codec }
func (e *Engine) Packs() *pack.Manager { return e.packs }
func (e *Engine) Index() *pack.Index { return e.index }
func (e *Engine) Data() *datafile.Provisioner { return e.data }

// DataFile returns the local path of a data file, downloading it on first use.
func (e *Engine) DataFile(ctx context.Context, name string) (string, error) {
	return e.data.Path(ctx, name)
}

// LoadWorld binds the named pack to world name and loads it with seed. A
// world that is already loaded from the same pack is returned as is; one
// loaded from another pack yields ErrWorldBound.
func (e *Engine) LoadWorld(name, packName string, seed int64) (*pack.Container, error) {
	e.mu.RLock()
	if c, ok := e.worlds[name]; ok {
		e.mu.RUnlock()
		return bound(name, packName, c)
	}
	e.mu.RUnlock()

	c, err := e.packs.Container(packName)
	if err != nil {
		return nil, fmt.Errorf("load world %s: %w", name, err)
	}
	if err := c.Load(seed); err != nil {
		return nil, fmt.Errorf("load world %s: %w", name, err)
	}

	e.mu.Lock()
	// Double-check after acquiring write lock.
	if existing, ok := e.worlds[name]; ok {
		e.mu.Unlock()
		c.Unload()
		return bound(name, packName, existing)
	}
	e.worlds[name] = c
	e.mu.Unlock()

	e.log.Info("world loaded", "world", name, "pack", packName, "seed", seed)
	return c, nil
}

func bound(name, packName string, c *pack.Container) (*pack.Container, error) {
	if got := c.Pack().Name; got != packName {
		return nil, fmt.Errorf("load world %s from %s: %w (%s)", name, packName, ErrWorldBound, got)
	}
	return c, nil
}

// World returns the container of a loaded world.
func (e *Engine) World(name string) (*pack.Container, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.worlds[name]
	return c, ok
}

// Worlds lists the loaded world names, sorted.
func (e *Engine) Worlds() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.worlds))
	for name := range e.worlds {
		names = append(names, name)
	}
	e.mu.RUnlock()
	slices.Sort(names)
	return names
}

// UnloadWorld unloads and forgets a world.
func (e *Engine) UnloadWorld(name string) error {
	e.mu.Lock()
	c, ok := e.worlds[name]
	delete(e.worlds, name)
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("unload world %s: %w", name, ErrWorldNotFound)
	}
	c.Unload()
	e.pruneNoise()
	e.log.Info("world unloaded", "world", name)
	return nil
}

// pruneNoise drops cached noise generators no loaded world uses. A world
// still loading may lose its cache entry; it keeps its own generator and a
// later world with the same seed builds a fresh one.
func (e *Engine) pruneNoise() {
	type seedKey struct {
		algo noise.Algorithm
		seed int64
	}
	used := make(map[seedKey]bool)
	e.mu.RLock()
	for _, c := range e.worlds {
		if dim := c.Dimension(); dim != nil {
			used[seedKey{dim.Noise().Algorithm(), dim.Noise().Seed()}] = true
		}
	}
	e.mu.RUnlock()

	if n := e.noise.Retain(func(a noise.Algorithm, seed int64) bool {
		return used[seedKey{a, seed}]
	}); n > 0 {
		e.log.Debug("noise generators released", "count", n)
	}
}

// Close unloads every world and releases the pack index.
func (e *Engine) Close() error {
	for _, name := range e.Worlds() {
		_ = e.UnloadWorld(name)
	}
	return e.closeIndex()
}

func (e *Engine) closeIndex() error {
	if e.index == nil {
		return nil
	}
	if err := e.index.Close(); err != nil {
		return fmt.Errorf("close pack index: %w", err)
	}
	return nil
}
