package terrain

import (
	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// Plains is gently rolling land around the fluid level: a single low
// frequency noise sample scaled by the blended biome weight.
type Plains struct {
	gen.Base `yaml:"-"`

	Offset    float64 `yaml:"offset"`
	Scale     float64 `yaml:"scale"`
	Amplitude float64 `yaml:"amplitude"`

	fluid float64
}

// NewPlains is the factory for orbis:plains.
func NewPlains(b gen.Binding) gen.Terrain {
	return &Plains{
		Base:      gen.NewBase(b),
		Scale:     400,
		Amplitude: 16,
	}
}

func (p *Plains) Validate() error {
	if p.Scale <= 0 {
		return gen.Malformed("scale", "must be positive, got %g", p.Scale)
	}
	if p.Amplitude < 0 {
		return gen.Malformed("amplitude", "must not be negative, got %g", p.Amplitude)
	}
	return nil
}

func (p *Plains) Load(dim *gen.Dimension) error {
	p.fluid = float64(dim.FluidHeight())
	return nil
}

func (p *Plains) Height(x, z, minBound int, biomeWeight float64, n *noise.Generator) float64 {
	base := p.fluid + float64(minBound) + p.Offset
	relief := n.Noise2D(float64(x)/p.Scale, float64(z)/p.Scale)
	return base + relief*p.Amplitude*biomeWeight
}
