package gen

// ChunkPos identifies a chunk by its X and Z coordinates.
type ChunkPos struct{ X, Z int }

// ChunkColumns holds the generated heights and biomes of one 16×16 chunk.
// Index = z*16 + x with local coordinates.
type ChunkColumns struct {
	Pos     ChunkPos
	Heights [256]int
	Biomes  [256]*Biome
}

// HeightAt returns the height at local column (x, z), x and z in [0,16).
func (c *ChunkColumns) HeightAt(x, z int) int {
	return c.Heights[z*16+x]
}

// BiomeAt returns the biome at local column (x, z).
func (c *ChunkColumns) BiomeAt(x, z int) *Biome {
	return c.Biomes[z*16+x]
}

// Generate fills the columns of chunk (cx, cz). Biomes of the chunk and its
// blend margin are classified once and reused for every column's weight, so
// the result equals per-column HeightAt and BiomeAt calls.
func (d *Dimension) Generate(cx, cz int) *ChunkColumns {
	c := &ChunkColumns{Pos: ChunkPos{X: cx, Z: cz}}

	r := d.settings.BlendRadius
	side := 16 + 2*r
	grid := make([]*Biome, side*side)
	ox, oz := cx*16-r, cz*16-r
	for gz := 0; gz < side; gz++ {
		for gx := 0; gx < side; gx++ {
			grid[gz*side+gx] = d.distributor.BiomeAt(ox+gx, oz+gz)
		}
	}

	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			gx, gz := x+r, z+r
			w := d.blend(func(dx, dz int) *Biome {
				return grid[(gz+dz)*side+gx+dx]
			})
			c.Biomes[z*16+x] = grid[gz*side+gx]
			c.Heights[z*16+x] = d.heightWith(cx*16+x, cz*16+z, w)
		}
	}
	return c
}
