package terrain

import (
	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// The detail layer samples the shared generator far away from the base layer
// so the two do not correlate.
const detailShift = 7919.5

// Noise is hilly terrain: fractal base noise scaled by the biome weight plus a
// fine detail layer.
type Noise struct {
	gen.Base `yaml:"-"`

	Offset      float64 `yaml:"offset"`
	Scale       float64 `yaml:"scale"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Amplitude   float64 `yaml:"amplitude"`

	DetailScale     float64 `yaml:"detailScale"`
	DetailOctaves   int     `yaml:"detailOctaves"`
	DetailAmplitude float64 `yaml:"detailAmplitude"`

	fluid float64
}

// NewNoise is the factory for orbis:noise.
func NewNoise(b gen.Binding) gen.Terrain {
	return &Noise{
		Base:            gen.NewBase(b),
		Scale:           128,
		Octaves:         6,
		Persistence:     0.5,
		Amplitude:       16,
		DetailScale:     32,
		DetailOctaves:   3,
		DetailAmplitude: 4,
	}
}

func (t *Noise) Validate() error {
	switch {
	case t.Scale <= 0:
		return gen.Malformed("scale", "must be positive, got %g", t.Scale)
	case t.DetailScale <= 0:
		return gen.Malformed("detailScale", "must be positive, got %g", t.DetailScale)
	case t.Octaves < 1 || t.Octaves > 16:
		return gen.Malformed("octaves", "must be within [1, 16], got %d", t.Octaves)
	case t.DetailOctaves < 1 || t.DetailOctaves > 16:
		return gen.Malformed("detailOctaves", "must be within [1, 16], got %d", t.DetailOctaves)
	case t.Persistence <= 0 || t.Persistence > 1:
		return gen.Malformed("persistence", "must be within (0, 1], got %g", t.Persistence)
	case t.Amplitude < 0:
		return gen.Malformed("amplitude", "must not be negative, got %g", t.Amplitude)
	case t.DetailAmplitude < 0:
		return gen.Malformed("detailAmplitude", "must not be negative, got %g", t.DetailAmplitude)
	}
	return nil
}

func (t *Noise) Load(dim *gen.Dimension) error {
	t.fluid = float64(dim.FluidHeight())
	return nil
}

func (t *Noise) Height(x, z, minBound int, biomeWeight float64, n *noise.Generator) float64 {
	fx, fz := float64(x), float64(z)

	base := n.OctaveNoise2D(fx/t.Scale, fz/t.Scale, t.Octaves, t.Persistence)
	detail := n.OctaveNoise2D(fx/t.DetailScale+detailShift, fz/t.DetailScale-detailShift, t.DetailOctaves, t.Persistence)

	height := t.fluid + float64(minBound) + t.Offset
	return height + base*t.Amplitude*biomeWeight + detail*t.DetailAmplitude
}
