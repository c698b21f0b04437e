package distributor

import (
	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/key"
)

// Single places one biome everywhere. Without a configured biome it uses the
// first entry of the dimension's biome table.
type Single struct {
	gen.Base `yaml:"-"`

	Biome key.Key `yaml:"biome,omitempty"`

	biome *gen.Biome
}

// NewSingle is the factory for orbis:single.
func NewSingle(b gen.Binding) gen.Distributor {
	return &Single{Base: gen.NewBase(b)}
}

func (s *Single) Load(dim *gen.Dimension) error {
	if s.Biome.IsZero() {
		s.biome = dim.Biomes()[0]
		return nil
	}
	b, ok := dim.Biome(s.Biome)
	if !ok {
		return gen.Malformed("biome", "unknown biome %s", s.Biome)
	}
	s.biome = b
	return nil
}

func (s *Single) BiomeAt(x, z int) *gen.Biome {
	return s.BiomeAtFloat(float64(x), float64(z))
}

func (s *Single) BiomeAtFloat(_, _ float64) *gen.Biome {
	return s.biome
}
