package pack

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/orbis/pkg/gen"
)

// State is a Container's lifecycle stage.
type State int32

const (
	StateUnbound State = iota
	StateLoading
	StateLoaded
	StateUnloaded
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateUnloaded:
		return "unloaded"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Container binds one pack to one world. It moves through
// Unbound → Loading → Loaded → Unloaded; Unloaded is terminal.
//
// Queries read an atomic state and an atomic Dimension pointer and never
// lock. The Dimension is published before the state turns Loaded and is
// never replaced.
type Container struct {
	id    uuid.UUID
	pack  *Pack
	codec *gen.Codec
	log   *slog.Logger

	mu    sync.Mutex // serializes Load and Unload
	state atomic.Int32
	dim   atomic.Pointer[gen.Dimension]
}

// NewContainer returns an Unbound container for p.
func NewContainer(p *Pack, codec *gen.Codec, log *slog.Logger) *Container {
	id := uuid.New()
	return &Container{
		id:    id,
		pack:  p,
		codec: codec,
		log:   log.With("pack", p.Name, "container", id.String()),
	}
}

func (c *Container) ID() uuid.UUID { return c.id }
func (c *Container) Pack() *Pack { return c.pack }
func (c *Container) State() State { return State(c.state.Load()) }

// IsLoaded reports whether queries will be answered.
func (c *Container) IsLoaded() bool { return c.State() == StateLoaded }

// Dimension returns the loaded Dimension, or nil before the first
// successful Load.
func (c *Container) Dimension() *gen.Dimension { return c.dim.Load() }

// Load reads the pack's settings and builds its Dimension. Loading a Loaded
// container is a no-op that keeps the original Dimension. Any failure leaves
// the container Unloaded.
func (c *Container) Load(seed int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.State() {
	case StateLoaded:
		c.log.Debug("container already loaded")
		return nil
	case StateUnloaded:
		return fmt.Errorf("load pack %s: %w", c.pack.Name, ErrContainerUnloaded)
	}

	c.state.Store(int32(StateLoading))
	dim, err := c.load(seed)
	if err != nil {
		c.state.Store(int32(StateUnloaded))
		c.log.Error("failed to load pack", "error", err)
		return fmt.Errorf("load pack %s: %w", c.pack.Name, err)
	}

	c.dim.Store(dim)
	c.state.Store(int32(StateLoaded))
	c.log.Info("pack loaded", "dimension", dim.Name(), "seed", seed,
		"terrain", dim.Terrain().Provider(), "distributor", dim.Distributor().Provider())
	return nil
}

func (c *Container) load(seed int64) (*gen.Dimension, error) {
	if err := c.codec.CheckVersion(c.pack.Version); err != nil {
		return nil, err
	}
	return c.codec.LoadDimension(c.pack.Dir, c.pack.Dimension, seed)
}

// Unload moves the container to its terminal state. Later queries fail with
// ErrContainerUnloaded.
func (c *Container) Unload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() == StateUnloaded {
		return
	}
	c.state.Store(int32(StateUnloaded))
	c.log.Info("pack unloaded")
}

func (c *Container) dimension() (*gen.Dimension, error) {
	switch c.State() {
	case StateLoaded:
		return c.dim.Load(), nil
	case StateUnloaded:
		return nil, ErrContainerUnloaded
	default:
		return nil, ErrNotLoaded
	}
}

// HeightAt returns the terrain height of column (x, z).
func (c *Container) HeightAt(x, z int) (int, error) {
	dim, err := c.dimension()
	if err != nil {
		return 0, err
	}
	return dim.HeightAt(x, z), nil
}

// BiomeAt classifies column (x, z).
func (c *Container) BiomeAt(x, z int) (*gen.Biome, error) {
	dim, err := c.dimension()
	if err != nil {
		return nil, err
	}
	return dim.BiomeAt(x, z), nil
}

// BiomeAtFloat classifies an arbitrary point.
func (c *Container) BiomeAtFloat(x, z float64) (*gen.Biome, error) {
	dim, err := c.dimension()
	if err != nil {
		return nil, err
	}
	return dim.BiomeAtFloat(x, z), nil
}

// Chunk generates the heights and biomes of chunk (cx, cz).
func (c *Container) Chunk(cx, cz int) (*gen.ChunkColumns, error) {
	dim, err := c.dimension()
	if err != nil {
		return nil, err
	}
	return dim.Generate(cx, cz), nil
}
