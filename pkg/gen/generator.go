package gen

import (
	"github.com/OCharnyshevich/orbis/pkg/key"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// Kind names a family of providers. Ids are unique per kind.
type Kind int

const (
	KindTerrain Kind = iota + 1
	KindDistributor
)

func (k Kind) String() string {
	switch k {
	case KindTerrain:
		return "terrain"
	case KindDistributor:
		return "distributor"
	default:
		return "unknown"
	}
}

// Folder is the pack sub-folder holding documents of this kind.
func (k Kind) Folder() string {
	return "generators/" + k.String()
}

// Binding is everything a provider learns about itself before its parameters
// are decoded: its name in the pack, the id it was resolved by, and the folder
// it may read extra files from.
type Binding struct {
	Name           string
	Provider       key.Key
	SettingsFolder string
}

// Base carries a provider's Binding. Providers embed it with a `yaml:"-"` tag
// so that it stays out of their settings documents.
type Base struct {
	binding Binding
}

// NewBase wraps b.
func NewBase(b Binding) Base { return Base{binding: b} }

func (b Base) Name() string { return b.binding.Name }
func (b Base) Provider() key.Key { return b.binding.Provider }
func (b Base) SettingsFolder() string { return b.binding.SettingsFolder }
func (b Base) Binding() Binding { return b.binding }

// Provider is the part shared by terrains and distributors.
type Provider interface {
	Name() string
	Provider() key.Key
	SettingsFolder() string

	// Load runs once after the parameters are decoded and the owning
	// Dimension is assembled, and before any query. It may precompute state;
	// nothing it writes may change afterwards.
	Load(dim *Dimension) error
}

// Terrain computes column heights.
type Terrain interface {
	Provider

	// Height returns the elevation of column (x, z). minBound is the world's
	// lower generation bound and biomeWeight a blend factor in [0, 1] from the
	// biome-blending layer. Height must be pure: no I/O, no hidden mutable
	// state. Coordinates are never range-checked here.
	Height(x, z, minBound int, biomeWeight float64, n *noise.Generator) float64
}

// Distributor classifies points into biomes.
type Distributor interface {
	Provider

	// BiomeAt classifies a column. It must equal BiomeAtFloat(float64(x), float64(z)).
	BiomeAt(x, z int) *Biome
	BiomeAtFloat(x, z float64) *Biome
}

// Validator is implemented by providers that check their decoded parameters.
// Errors should be built with Malformed so they carry a field path.
type Validator interface {
	Validate() error
}

type (
	TerrainFactory     func(Binding) Terrain
	DistributorFactory func(Binding) Distributor
)
