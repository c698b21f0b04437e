package terrain

import (
	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// Flat is a superflat world: every column has the same height.
type Flat struct {
	gen.Base `yaml:"-"`

	// Level is the absolute surface height. It defaults to the fluid level.
	Level *int `yaml:"height,omitempty"`

	surface float64
}

// NewFlat is the factory for orbis:flat.
func NewFlat(b gen.Binding) gen.Terrain {
	return &Flat{Base: gen.NewBase(b)}
}

func (f *Flat) Load(dim *gen.Dimension) error {
	level := dim.FluidLevel()
	if f.Level != nil {
		level = *f.Level
	}
	if level < dim.MinHeight() || level > dim.MaxHeight() {
		return gen.Malformed("height", "%d outside world bounds [%d, %d]", level, dim.MinHeight(), dim.MaxHeight())
	}
	f.surface = float64(level)
	return nil
}

func (f *Flat) Height(_, _, _ int, _ float64, _ *noise.Generator) float64 {
	return f.surface
}
