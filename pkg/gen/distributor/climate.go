package distributor

import (
	"fmt"
	"math"

	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/key"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// Climate samples temperature and rainfall fields and picks the biome whose
// own "temperature" and "rainfall" parameters lie nearest. Both fields are
// normalized to [0, 1]; biomes without the parameters sit at 0.5.
type Climate struct {
	gen.Base `yaml:"-"`

	Scale       float64   `yaml:"scale"`
	Octaves     int       `yaml:"octaves"`
	Persistence float64   `yaml:"persistence"`
	Biomes      []key.Key `yaml:"biomes,omitempty"`

	temp, rain *noise.Generator
	points     []climatePoint
}

type climatePoint struct {
	temp, rain float64
	biome      *gen.Biome
}

// NewClimate is the factory for orbis:climate.
func NewClimate(b gen.Binding) gen.Distributor {
	return &Climate{
		Base:        gen.NewBase(b),
		Scale:       512,
		Octaves:     4,
		Persistence: 0.5,
	}
}

func (c *Climate) Validate() error {
	switch {
	case c.Scale <= 0:
		return gen.Malformed("scale", "must be positive, got %g", c.Scale)
	case c.Octaves < 1 || c.Octaves > 16:
		return gen.Malformed("octaves", "must be within [1, 16], got %d", c.Octaves)
	case c.Persistence <= 0 || c.Persistence > 1:
		return gen.Malformed("persistence", "must be within (0, 1], got %g", c.Persistence)
	}
	return nil
}

func (c *Climate) Load(dim *gen.Dimension) error {
	biomes, err := candidates(dim, "biomes", c.Biomes)
	if err != nil {
		return err
	}

	algo := dim.Noise().Algorithm()
	if c.temp, err = noise.NewWithAlgorithm(algo, dim.Seed()+100); err != nil {
		return fmt.Errorf("temperature noise: %w", err)
	}
	if c.rain, err = noise.NewWithAlgorithm(algo, dim.Seed()+200); err != nil {
		return fmt.Errorf("rainfall noise: %w", err)
	}

	c.points = make([]climatePoint, len(biomes))
	for i, b := range biomes {
		c.points[i] = climatePoint{
			temp:  b.Float("temperature", 0.5),
			rain:  b.Float("rainfall", 0.5),
			biome: b,
		}
	}
	return nil
}

func (c *Climate) BiomeAt(x, z int) *gen.Biome {
	return c.BiomeAtFloat(float64(x), float64(z))
}

func (c *Climate) BiomeAtFloat(x, z float64) *gen.Biome {
	temp, rain := c.ClimateAt(x, z)

	best, bestDist := c.points[0].biome, math.Inf(1)
	for _, p := range c.points {
		dt, dr := p.temp-temp, p.rain-rain
		if d := dt*dt + dr*dr; d < bestDist {
			best, bestDist = p.biome, d
		}
	}
	return best
}

// ClimateAt returns the normalized temperature and rainfall at (x, z).
func (c *Climate) ClimateAt(x, z float64) (temp, rain float64) {
	tx, tz := x/c.Scale, z/c.Scale
	temp = c.temp.OctaveNoise2D(tx, tz, c.Octaves, c.Persistence)*0.5 + 0.5
	rain = c.rain.OctaveNoise2D(tx+100, tz+100, c.Octaves, c.Persistence)*0.5 + 0.5
	return temp, rain
}
