package gen

import (
	"math"

	"github.com/OCharnyshevich/orbis/pkg/key"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// constTerrain returns Value raised by ten blocks per unit of biome weight.
type constTerrain struct {
	Base `yaml:"-"`

	Value float64 `yaml:"value"`

	order *[]string
}

func (c *constTerrain) Load(*Dimension) error {
	if c.order != nil {
		*c.order = append(*c.order, "terrain")
	}
	return nil
}

func (c *constTerrain) Height(_, _, _ int, w float64, _ *noise.Generator) float64 {
	return c.Value + 10*w
}

// stripes assigns biomes in vertical bands Width blocks wide.
type stripes struct {
	Base `yaml:"-"`

	Width int `yaml:"width"`

	biomes []*Biome
	order  *[]string
}

func (s *stripes) Load(dim *Dimension) error {
	if s.order != nil {
		*s.order = append(*s.order, "distributor")
	}
	s.biomes = dim.Biomes()
	return nil
}

func (s *stripes) BiomeAt(x, z int) *Biome { return s.BiomeAtFloat(float64(x), float64(z)) }

func (s *stripes) BiomeAtFloat(x, _ float64) *Biome {
	n := len(s.biomes)
	i := int(math.Floor(x/float64(s.Width))) % n
	if i < 0 {
		i += n
	}
	return s.biomes[i]
}

func testSettings() DimensionSettings {
	return DimensionSettings{
		Name:        "test",
		Seed:        42,
		FluidHeight: 64,
		MinHeight:   -64,
		MaxHeight:   320,
		BlendRadius: 2,
	}
}

func testBiomes() []*Biome {
	return []*Biome{
		NewBiome(key.MustNew("test", "flat"), map[string]any{"weight": 0}),
		NewBiome(key.MustNew("test", "hills"), map[string]any{"weight": 1}),
	}
}
