// Package distributor holds the built-in biome distributors.
//
// Every distributor classifies in continuous coordinates; the integer form
// is the float form evaluated at the column's corner, so both agree exactly.
package distributor

import (
	"fmt"

	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/key"
)

var (
	SingleID   = key.MustNew(key.Orbis, "single")
	ClimateID  = key.MustNew(key.Orbis, "climate")
	CellularID = key.MustNew(key.Orbis, "cellular")
)

// Register adds the built-in distributors to r.
func Register(r *gen.Registry) error {
	builtins := []struct {
		id key.Key
		f  gen.DistributorFactory
	}{
		{SingleID, NewSingle},
		{ClimateID, NewClimate},
		{CellularID, NewCellular},
	}
	for _, b := range builtins {
		if err := r.RegisterDistributor(b.id, b.f); err != nil {
			return fmt.Errorf("register builtin distributors: %w", err)
		}
	}
	return nil
}

// candidates resolves ids against dim's biome table, or returns the whole
// table when ids is empty.
func candidates(dim *gen.Dimension, field string, ids []key.Key) ([]*gen.Biome, error) {
	if len(ids) == 0 {
		return dim.Biomes(), nil
	}
	out := make([]*gen.Biome, 0, len(ids))
	for i, id := range ids {
		b, ok := dim.Biome(id)
		if !ok {
			return nil, gen.Malformed(fmt.Sprintf("%s.%d", field, i), "unknown biome %s", id)
		}
		out = append(out, b)
	}
	return out, nil
}
