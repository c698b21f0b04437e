package distributor

import (
	"math"

	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/key"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// Salts separating the hashes drawn for one cell.
const (
	saltJitterX = 0x5bd1e995
	saltJitterZ = 0x27d4eb2f
	saltBiome   = 0x165667b1
)

// Cellular splits the world into jittered Voronoi regions roughly CellSize
// blocks across. Each region takes one biome, chosen by hashing its cell.
type Cellular struct {
	gen.Base `yaml:"-"`

	CellSize int       `yaml:"cellSize"`
	Jitter   float64   `yaml:"jitter"`
	Biomes   []key.Key `yaml:"biomes,omitempty"`

	seed  int64
	table []*gen.Biome
}

// NewCellular is the factory for orbis:cellular.
func NewCellular(b gen.Binding) gen.Distributor {
	return &Cellular{
		Base:     gen.NewBase(b),
		CellSize: 64,
		Jitter:   0.8,
	}
}

func (c *Cellular) Validate() error {
	if c.CellSize < 1 {
		return gen.Malformed("cellSize", "must be at least 1, got %d", c.CellSize)
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		return gen.Malformed("jitter", "must be within [0, 1], got %g", c.Jitter)
	}
	return nil
}

func (c *Cellular) Load(dim *gen.Dimension) error {
	table, err := candidates(dim, "biomes", c.Biomes)
	if err != nil {
		return err
	}
	c.table = table
	c.seed = dim.Seed()
	return nil
}

func (c *Cellular) BiomeAt(x, z int) *gen.Biome {
	return c.BiomeAtFloat(float64(x), float64(z))
}

func (c *Cellular) BiomeAtFloat(x, z float64) *gen.Biome {
	cx, cz := c.Cell(x, z)
	h := noise.Hash2(c.seed^saltBiome, cx, cz)
	return c.table[h%uint64(len(c.table))]
}

// Cell returns the lattice coordinates of the region that owns (x, z).
func (c *Cellular) Cell(x, z float64) (int64, int64) {
	size := float64(c.CellSize)
	gx, gz := int64(math.Floor(x/size)), int64(math.Floor(z/size))

	bestX, bestZ, bestDist := gx, gz, math.Inf(1)
	for dz := int64(-1); dz <= 1; dz++ {
		for dx := int64(-1); dx <= 1; dx++ {
			px, pz := c.feature(gx+dx, gz+dz)
			ddx, ddz := px-x, pz-z
			if d := ddx*ddx + ddz*ddz; d < bestDist {
				bestX, bestZ, bestDist = gx+dx, gz+dz, d
			}
		}
	}
	return bestX, bestZ
}

// feature is the jittered centre point of cell (cx, cz) in block units.
func (c *Cellular) feature(cx, cz int64) (float64, float64) {
	jx := noise.Unit(noise.Hash2(c.seed^saltJitterX, cx, cz)) - 0.5
	jz := noise.Unit(noise.Hash2(c.seed^saltJitterZ, cx, cz)) - 0.5
	size := float64(c.CellSize)
	return (float64(cx) + 0.5 + jx*c.Jitter) * size, (float64(cz) + 0.5 + jz*c.Jitter) * size
}
