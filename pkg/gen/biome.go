package gen

import (
	"maps"
	"math"

	"github.com/OCharnyshevich/orbis/pkg/key"
)

// Biome is a named bundle of generation parameters. Providers read whatever
// parameters they understand, e.g. "temperature" for the climate distributor.
// A Biome is immutable once built.
type Biome struct {
	id     key.Key
	params map[string]any
	weight float64
}

// NewBiome copies params. The "weight" parameter, clamped to [0, 1] and
// defaulting to 1, scales terrain relief inside the biome.
func NewBiome(id key.Key, params map[string]any) *Biome {
	b := &Biome{id: id, params: maps.Clone(params)}
	if b.params == nil {
		b.params = map[string]any{}
	}
	b.weight = math.Min(1, math.Max(0, b.Float("weight", 1)))
	return b
}

func (b *Biome) ID() key.Key { return b.id }

// Weight is the biome's relief factor in [0, 1].
func (b *Biome) Weight() float64 { return b.weight }

// Param returns the raw parameter value.
func (b *Biome) Param(name string) (any, bool) {
	v, ok := b.params[name]
	return v, ok
}

// Params returns a copy of every parameter.
func (b *Biome) Params() map[string]any {
	return maps.Clone(b.params)
}

// Float returns a numeric parameter or def when absent or not numeric.
func (b *Biome) Float(name string, def float64) float64 {
	switch v := b.params[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return def
	}
}

// Int returns an integral parameter or def.
func (b *Biome) Int(name string, def int) int {
	switch v := b.params[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	}
	return def
}

// Text returns a string parameter or def.
func (b *Biome) Text(name, def string) string {
	if v, ok := b.params[name].(string); ok {
		return v
	}
	return def
}

func (b *Biome) Bool(name string, def bool) bool {
	if v, ok := b.params[name].(bool); ok {
		return v
	}
	return def
}
