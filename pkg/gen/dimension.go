package gen

import (
	"fmt"
	"math"
	"slices"

	"github.com/OCharnyshevich/orbis/pkg/key"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// MaxBlendRadius bounds the biome-blending kernel (a (2r+1)² neighbourhood).
const MaxBlendRadius = 8

// DimensionSettings holds the scalar part of a dimension document.
type DimensionSettings struct {
	Name        string
	Seed        int64
	FluidHeight int // measured from MinHeight
	MinHeight   int
	MaxHeight   int
	Noise       noise.Algorithm
	BlendRadius int
}

// Dimension is the resolved generation configuration of one world. It is
// immutable after NewDimension returns and is shared by every generation call
// for that world.
type Dimension struct {
	settings    DimensionSettings
	noise       *noise.Generator
	terrain     Terrain
	distributor Distributor
	biomes      []*Biome
	byID        map[key.Key]*Biome
	kernel      []kernelCell
}

type kernelCell struct {
	dx, dz int
	w      float64
}

// NewDimension validates s, assembles the dimension, then loads d and t in
// that order. n may be nil, in which case a generator for s.Noise and s.Seed
// is built.
func NewDimension(s DimensionSettings, n *noise.Generator, t Terrain, d Distributor, biomes []*Biome) (*Dimension, error) {
	if s.MaxHeight <= s.MinHeight {
		return nil, Malformed("maxHeight", "must exceed minHeight (%d), got %d", s.MinHeight, s.MaxHeight)
	}
	if fluid := s.MinHeight + s.FluidHeight; fluid < s.MinHeight || fluid > s.MaxHeight {
		return nil, Malformed("fluidHeight", "fluid level %d outside [%d, %d]", fluid, s.MinHeight, s.MaxHeight)
	}
	if s.BlendRadius < 0 || s.BlendRadius > MaxBlendRadius {
		return nil, Malformed("blendRadius", "must be within [0, %d], got %d", MaxBlendRadius, s.BlendRadius)
	}
	if t == nil {
		return nil, Malformed("terrain", "missing")
	}
	if d == nil {
		return nil, Malformed("distributor", "missing")
	}
	if len(biomes) == 0 {
		return nil, Malformed("biomes", "at least one biome is required")
	}

	if n == nil {
		var err error
		if n, err = noise.NewWithAlgorithm(s.Noise, s.Seed); err != nil {
			return nil, Malformed("noise", "%v", err)
		}
	}
	s.Noise = n.Algorithm()

	dim := &Dimension{
		settings:    s,
		noise:       n,
		terrain:     t,
		distributor: d,
		biomes:      slices.Clone(biomes),
		byID:        make(map[key.Key]*Biome, len(biomes)),
		kernel:      blendKernel(s.BlendRadius),
	}
	for i, b := range biomes {
		if b == nil {
			return nil, Malformed(fmt.Sprintf("biomes.%d", i), "nil biome")
		}
		if _, dup := dim.byID[b.ID()]; dup {
			return nil, Malformed(fmt.Sprintf("biomes.%d.id", i), "duplicate biome %s", b.ID())
		}
		dim.byID[b.ID()] = b
	}

	if err := d.Load(dim); err != nil {
		return nil, prefixed("distributor", err)
	}
	if err := t.Load(dim); err != nil {
		return nil, prefixed("terrain", err)
	}
	return dim, nil
}

// blendKernel returns gaussian weights with sigma = r over the (2r+1)² square.
func blendKernel(r int) []kernelCell {
	if r == 0 {
		return []kernelCell{{w: 1}}
	}
	sigma2 := 2 * float64(r*r)
	cells := make([]kernelCell, 0, (2*r+1)*(2*r+1))
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			cells = append(cells, kernelCell{dx: dx, dz: dz, w: math.Exp(-float64(dx*dx+dz*dz) / sigma2)})
		}
	}
	return cells
}

func (d *Dimension) Name() string { return d.settings.Name }
func (d *Dimension) Seed() int64 { return d.settings.Seed }
func (d *Dimension) FluidHeight() int { return d.settings.FluidHeight }
func (d *Dimension) MinHeight() int { return d.settings.MinHeight }
func (d *Dimension) MaxHeight() int { return d.settings.MaxHeight }
func (d *Dimension) BlendRadius() int { return d.settings.BlendRadius }
func (d *Dimension) Settings() DimensionSettings { return d.settings }
func (d *Dimension) Noise() *noise.Generator { return d.noise }
func (d *Dimension) Terrain() Terrain { return d.terrain }
func (d *Dimension) Distributor() Distributor { return d.distributor }

// FluidLevel is the absolute fluid surface height.
func (d *Dimension) FluidLevel() int { return d.settings.MinHeight + d.settings.FluidHeight }

// Biomes returns the biome table in document order.
func (d *Dimension) Biomes() []*Biome { return slices.Clone(d.biomes) }

// Biome looks a biome up by id.
func (d *Dimension) Biome(id key.Key) (*Biome, bool) {
	b, ok := d.byID[id]
	return b, ok
}

// BiomeAt classifies column (x, z).
func (d *Dimension) BiomeAt(x, z int) *Biome {
	return d.distributor.BiomeAt(x, z)
}

// BiomeAtFloat classifies an arbitrary point.
func (d *Dimension) BiomeAtFloat(x, z float64) *Biome {
	return d.distributor.BiomeAtFloat(x, z)
}

// BiomeWeight blends the weights of the biomes around (x, z) with a gaussian
// kernel. The result is in [0, 1] and varies smoothly across biome borders.
func (d *Dimension) BiomeWeight(x, z int) float64 {
	center := d.distributor.BiomeAt(x, z)
	return d.blend(func(dx, dz int) *Biome {
		if dx == 0 && dz == 0 {
			return center
		}
		return d.distributor.BiomeAt(x+dx, z+dz)
	})
}

func (d *Dimension) blend(at func(dx, dz int) *Biome) float64 {
	var sum, total float64
	for _, c := range d.kernel {
		sum += c.w * at(c.dx, c.dz).Weight()
		total += c.w
	}
	return sum / total
}

// HeightAt returns the terrain height of column (x, z), clamped to the
// dimension's bounds. It never fails.
func (d *Dimension) HeightAt(x, z int) int {
	return d.heightWith(x, z, d.BiomeWeight(x, z))
}

func (d *Dimension) heightWith(x, z int, weight float64) int {
	h := d.terrain.Height(x, z, d.settings.MinHeight, weight, d.noise)
	switch {
	case math.IsNaN(h), h <= float64(d.settings.MinHeight):
		return d.settings.MinHeight
	case h >= float64(d.settings.MaxHeight):
		return d.settings.MaxHeight
	}
	return int(math.Floor(h))
}

// Clamp limits y to [MinHeight, MaxHeight].
func (d *Dimension) Clamp(y int) int {
	return min(max(y, d.settings.MinHeight), d.settings.MaxHeight)
}
